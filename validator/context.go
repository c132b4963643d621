package validator

type CredentialKind uint8

const (
	KeyCredential CredentialKind = iota
	ScriptCredential
)

// Credential is an authorization identity: the blake2b-224 hash of either
// a verification key or a script.
type Credential struct {
	Kind CredentialKind
	Hash [28]byte
}

// Address is a payment credential plus an optional staking credential.
// The struct is comparable; payout destinations match on full equality.
type Address struct {
	Payment  Credential
	HasStake bool
	Stake    Credential
}

type DatumKind uint8

const (
	DatumNone DatumKind = iota
	DatumHash
)

// OutputDatum is the datum attached to a transaction output: either
// nothing, or a 32-byte hash used here as the anti-replay tag.
type OutputDatum struct {
	Kind DatumKind
	Hash [32]byte
}

// TxOut is a transaction output as presented by the execution host.
// Only the lovelace amount matters to payout accounting; native assets
// ride along untouched and are not modelled here.
type TxOut struct {
	Address  Address
	Lovelace uint64
	Datum    OutputDatum
}

// OutputReference identifies the unspent output a validation run concerns.
type OutputReference struct {
	TxHash [32]byte
	Index  uint64
}

type PurposeKind uint8

const (
	PurposeSpend PurposeKind = iota + 1
	PurposeOther
)

// ScriptPurpose says which input this run is authorizing. SpentRef is
// meaningful only when Kind is PurposeSpend.
type ScriptPurpose struct {
	Kind     PurposeKind
	SpentRef OutputReference
}

// ScriptContext is the read-only transaction view supplied per call.
// Withdrawals double as the indirect-authorization channel: presence of a
// credential as a key proves its own validation logic ran, whatever the
// withdrawn amount.
type ScriptContext struct {
	Outputs          []TxOut
	ExtraSignatories [][28]byte
	Withdrawals      map[Credential]uint64
	Purpose          ScriptPurpose
}
