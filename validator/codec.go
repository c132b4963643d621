package validator

import (
	"fmt"

	"adalock.dev/market/plutus"
)

// Wire shapes, in constructor form:
//
//	Credential        = Constr 0 [keyhash] | Constr 1 [scripthash]
//	StakePart         = Constr 0 [Constr 0 [Credential]] | Constr 1 []
//	Address           = Constr 0 [Credential, StakePart]
//	Payout            = Constr 0 [Address, amount]
//	ListingDatum      = Constr 0 [[Payout], Credential]
//	Buy               = Constr 0 [payout_outputs_offset]
//	WithdrawOrUpdate  = Constr 1 []
//	OutputReference   = Constr 0 [Constr 0 [txhash], index]
//
// Pointer stake references are rejected; listings never use them.

// DecodeListingDatum parses the listing terms from their serialised form.
func DecodeListingDatum(b []byte) (ListingDatum, error) {
	data, err := plutus.Decode(b)
	if err != nil {
		return ListingDatum{}, serr(LIST_ERR_PARSE, err.Error())
	}
	fields, err := constrFields(data, 0, 2, "listing datum")
	if err != nil {
		return ListingDatum{}, err
	}
	rawPayouts, ok := fields[0].(plutus.List)
	if !ok {
		return ListingDatum{}, serr(LIST_ERR_PARSE, "listing datum: payouts must be a list")
	}
	payouts := make([]Payout, 0, len(rawPayouts))
	for _, raw := range rawPayouts {
		payout, err := payoutFromData(raw)
		if err != nil {
			return ListingDatum{}, err
		}
		payouts = append(payouts, payout)
	}
	owner, err := credentialFromData(fields[1])
	if err != nil {
		return ListingDatum{}, err
	}
	return ListingDatum{Payouts: payouts, Owner: owner}, nil
}

// EncodeListingDatum is the inverse of DecodeListingDatum, used by tooling
// that builds listings.
func EncodeListingDatum(datum ListingDatum) ([]byte, error) {
	rawPayouts := make(plutus.List, 0, len(datum.Payouts))
	for _, payout := range datum.Payouts {
		rawPayouts = append(rawPayouts, payoutToData(payout))
	}
	return plutus.Encode(plutus.Constr{
		Alternative: 0,
		Fields:      []plutus.Data{rawPayouts, credentialToData(datum.Owner)},
	})
}

// DecodeRedeemer parses an action request.
func DecodeRedeemer(b []byte) (Redeemer, error) {
	data, err := plutus.Decode(b)
	if err != nil {
		return nil, serr(LIST_ERR_PARSE, err.Error())
	}
	constr, ok := data.(plutus.Constr)
	if !ok {
		return nil, serr(LIST_ERR_PARSE, "redeemer: not a constructor")
	}
	switch constr.Alternative {
	case 0:
		if len(constr.Fields) != 1 {
			return nil, serr(LIST_ERR_PARSE, "buy: want 1 field")
		}
		offset, ok := constr.Fields[0].(plutus.Int)
		if !ok {
			return nil, serr(LIST_ERR_PARSE, "buy: offset must be an integer")
		}
		return Buy{PayoutOutputsOffset: int64(offset)}, nil
	case 1:
		if len(constr.Fields) != 0 {
			return nil, serr(LIST_ERR_PARSE, "withdraw_or_update: want 0 fields")
		}
		return WithdrawOrUpdate{}, nil
	default:
		return nil, serr(LIST_ERR_PARSE, fmt.Sprintf("redeemer: unknown alternative %d", constr.Alternative))
	}
}

// EncodeRedeemer is the inverse of DecodeRedeemer.
func EncodeRedeemer(redeemer Redeemer) ([]byte, error) {
	switch action := redeemer.(type) {
	case Buy:
		return plutus.Encode(plutus.Constr{
			Alternative: 0,
			Fields:      []plutus.Data{plutus.Int(action.PayoutOutputsOffset)},
		})
	case WithdrawOrUpdate:
		return plutus.Encode(plutus.Constr{Alternative: 1})
	default:
		return nil, serr(LIST_ERR_PARSE, "missing redeemer")
	}
}

// EncodeOutputReference produces the canonical bytes hashed into the
// anti-replay tag.
func EncodeOutputReference(ref OutputReference) ([]byte, error) {
	return plutus.Encode(plutus.Constr{
		Alternative: 0,
		Fields: []plutus.Data{
			plutus.Constr{Alternative: 0, Fields: []plutus.Data{plutus.Bytes(ref.TxHash[:])}},
			plutus.Int(ref.Index),
		},
	})
}

func constrFields(data plutus.Data, alternative uint64, want int, what string) ([]plutus.Data, error) {
	constr, ok := data.(plutus.Constr)
	if !ok {
		return nil, serr(LIST_ERR_PARSE, what+": not a constructor")
	}
	if constr.Alternative != alternative {
		return nil, serr(LIST_ERR_PARSE, fmt.Sprintf("%s: want alternative %d, got %d", what, alternative, constr.Alternative))
	}
	if len(constr.Fields) != want {
		return nil, serr(LIST_ERR_PARSE, fmt.Sprintf("%s: want %d fields, got %d", what, want, len(constr.Fields)))
	}
	return constr.Fields, nil
}

func credentialFromData(data plutus.Data) (Credential, error) {
	constr, ok := data.(plutus.Constr)
	if !ok {
		return Credential{}, serr(LIST_ERR_PARSE, "credential: not a constructor")
	}
	if constr.Alternative > 1 {
		return Credential{}, serr(LIST_ERR_PARSE, "credential: unknown alternative")
	}
	if len(constr.Fields) != 1 {
		return Credential{}, serr(LIST_ERR_PARSE, "credential: want 1 field")
	}
	raw, ok := constr.Fields[0].(plutus.Bytes)
	if !ok || len(raw) != 28 {
		return Credential{}, serr(LIST_ERR_PARSE, "credential: hash must be 28 bytes")
	}
	cred := Credential{Kind: KeyCredential}
	if constr.Alternative == 1 {
		cred.Kind = ScriptCredential
	}
	copy(cred.Hash[:], raw)
	return cred, nil
}

func credentialToData(cred Credential) plutus.Data {
	alternative := uint64(0)
	if cred.Kind == ScriptCredential {
		alternative = 1
	}
	return plutus.Constr{
		Alternative: alternative,
		Fields:      []plutus.Data{plutus.Bytes(append([]byte(nil), cred.Hash[:]...))},
	}
}

func addressFromData(data plutus.Data) (Address, error) {
	fields, err := constrFields(data, 0, 2, "address")
	if err != nil {
		return Address{}, err
	}
	payment, err := credentialFromData(fields[0])
	if err != nil {
		return Address{}, err
	}
	addr := Address{Payment: payment}

	stakePart, ok := fields[1].(plutus.Constr)
	if !ok {
		return Address{}, serr(LIST_ERR_PARSE, "address: malformed stake part")
	}
	switch stakePart.Alternative {
	case 0: // Some(referenced credential)
		if len(stakePart.Fields) != 1 {
			return Address{}, serr(LIST_ERR_PARSE, "address: malformed stake part")
		}
		// Alternative 1 of the reference would be a pointer; rejected.
		inline, err := constrFields(stakePart.Fields[0], 0, 1, "stake reference")
		if err != nil {
			return Address{}, err
		}
		stake, err := credentialFromData(inline[0])
		if err != nil {
			return Address{}, err
		}
		addr.HasStake = true
		addr.Stake = stake
	case 1: // None
		if len(stakePart.Fields) != 0 {
			return Address{}, serr(LIST_ERR_PARSE, "address: malformed stake part")
		}
	default:
		return Address{}, serr(LIST_ERR_PARSE, "address: malformed stake part")
	}
	return addr, nil
}

func addressToData(addr Address) plutus.Data {
	stakePart := plutus.Constr{Alternative: 1}
	if addr.HasStake {
		stakePart = plutus.Constr{
			Alternative: 0,
			Fields: []plutus.Data{
				plutus.Constr{Alternative: 0, Fields: []plutus.Data{credentialToData(addr.Stake)}},
			},
		}
	}
	return plutus.Constr{
		Alternative: 0,
		Fields:      []plutus.Data{credentialToData(addr.Payment), stakePart},
	}
}

func payoutFromData(data plutus.Data) (Payout, error) {
	fields, err := constrFields(data, 0, 2, "payout")
	if err != nil {
		return Payout{}, err
	}
	addr, err := addressFromData(fields[0])
	if err != nil {
		return Payout{}, err
	}
	amount, ok := fields[1].(plutus.Int)
	if !ok {
		return Payout{}, serr(LIST_ERR_PARSE, "payout: amount must be an integer")
	}
	if amount < 0 {
		return Payout{}, serr(LIST_ERR_PARSE, "payout: amount must be non-negative")
	}
	return Payout{Address: addr, Amount: uint64(amount)}, nil
}

func payoutToData(payout Payout) plutus.Data {
	return plutus.Constr{
		Alternative: 0,
		Fields:      []plutus.Data{addressToData(payout.Address), plutus.Int(payout.Amount)},
	}
}
