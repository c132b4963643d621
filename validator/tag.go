package validator

import "adalock.dev/market/crypto"

// DatumTag derives the anti-replay tag for the listing being spent:
// blake2b-256 over the canonical serialisation of the spent output
// reference. The output a purchase hinges on (the fee output, or every
// payout output when an authorizer co-signs) must carry this tag, so one
// physical output can never satisfy two listings spent in the same
// transaction.
func DatumTag(p crypto.Provider, ref OutputReference) ([32]byte, error) {
	encoded, err := EncodeOutputReference(ref)
	if err != nil {
		return [32]byte{}, err
	}
	return p.Blake2b256(encoded), nil
}
