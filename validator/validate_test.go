package validator

import (
	"testing"

	"adalock.dev/market/crypto"
)

func fillHash28(t *testing.T, b byte) [28]byte {
	t.Helper()
	var out [28]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func fillHash32(t *testing.T, b byte) [32]byte {
	t.Helper()
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func keyAddress(t *testing.T, b byte) Address {
	t.Helper()
	return Address{Payment: Credential{Kind: KeyCredential, Hash: fillHash28(t, b)}}
}

func testParams(t *testing.T) Params {
	t.Helper()
	return Params{
		Authorizers: [][28]byte{fillHash28(t, 0xaa)},
		FeeAddress:  keyAddress(t, 0xfe),
	}
}

func spendContext(t *testing.T, ref OutputReference, outputs ...TxOut) ScriptContext {
	t.Helper()
	return ScriptContext{
		Outputs: outputs,
		Purpose: ScriptPurpose{Kind: PurposeSpend, SpentRef: ref},
	}
}

func mustDatumTag(t *testing.T, ref OutputReference) OutputDatum {
	t.Helper()
	tag, err := DatumTag(crypto.StdProvider{}, ref)
	if err != nil {
		t.Fatalf("datum tag: %v", err)
	}
	return OutputDatum{Kind: DatumHash, Hash: tag}
}

func expectCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil || err.Error() != string(code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestValidateBuyFullFee(t *testing.T) {
	p := crypto.StdProvider{}
	params := testParams(t)
	seller := keyAddress(t, 0x01)
	ref := OutputReference{TxHash: fillHash32(t, 0x10), Index: 0}
	tag := mustDatumTag(t, ref)

	datum := ListingDatum{
		Payouts: []Payout{{Address: seller, Amount: 100}},
		Owner:   Credential{Kind: KeyCredential, Hash: fillHash28(t, 0x01)},
	}
	fee, err := MarketplaceFee(100)
	if err != nil {
		t.Fatalf("fee: %v", err)
	}

	t.Run("exact match accepts", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		if err := validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx); err != nil {
			t.Fatalf("expected accept, got %v", err)
		}
	})

	t.Run("untagged payout output accepts", func(t *testing.T) {
		// The full-fee path only enforces the tag on the fee output.
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100},
		)
		if err := validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx); err != nil {
			t.Fatalf("expected accept, got %v", err)
		}
	})

	t.Run("underpaid payout rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 99, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_MISMATCH)
	})

	t.Run("wrong payout address rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: keyAddress(t, 0x02), Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_MISMATCH)
	})

	t.Run("fee underpaid rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee - 1, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_FEE_MISMATCH)
	})

	t.Run("fee paid elsewhere rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: keyAddress(t, 0x03), Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_FEE_MISMATCH)
	})

	t.Run("fee output tagged for another listing rejects", func(t *testing.T) {
		otherTag := mustDatumTag(t, OutputReference{TxHash: fillHash32(t, 0x11), Index: 0})
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: otherTag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_FEE_MISMATCH)
	})

	t.Run("untagged fee output rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_FEE_MISMATCH)
	})

	t.Run("offset beyond outputs rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 5}, ctx), LIST_ERR_PAYOUT_RANGE)
	})

	t.Run("negative offset rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: -1}, ctx), LIST_ERR_PAYOUT_RANGE)
	})

	t.Run("non-spend purpose rejects", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		ctx.Purpose = ScriptPurpose{Kind: PurposeOther}
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PURPOSE_INVALID)
	})
}

func TestValidateBuyDiscount(t *testing.T) {
	p := crypto.StdProvider{}
	params := testParams(t)
	seller := keyAddress(t, 0x01)
	ref := OutputReference{TxHash: fillHash32(t, 0x10), Index: 1}
	tag := mustDatumTag(t, ref)

	datum := ListingDatum{
		Payouts: []Payout{{Address: seller, Amount: 100}},
		Owner:   Credential{Kind: KeyCredential, Hash: fillHash28(t, 0x01)},
	}

	withAuthorizer := func(ctx ScriptContext) ScriptContext {
		ctx.ExtraSignatories = [][28]byte{fillHash28(t, 0xaa)}
		return ctx
	}

	t.Run("tagged payout accepts without fee output", func(t *testing.T) {
		ctx := withAuthorizer(spendContext(t, ref,
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		))
		if err := validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx); err != nil {
			t.Fatalf("expected accept, got %v", err)
		}
	})

	t.Run("missing tag rejects", func(t *testing.T) {
		ctx := withAuthorizer(spendContext(t, ref,
			TxOut{Address: seller, Lovelace: 100},
		))
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_MISMATCH)
	})

	t.Run("tag of another listing rejects", func(t *testing.T) {
		otherTag := mustDatumTag(t, OutputReference{TxHash: fillHash32(t, 0x10), Index: 2})
		ctx := withAuthorizer(spendContext(t, ref,
			TxOut{Address: seller, Lovelace: 100, Datum: otherTag},
		))
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_MISMATCH)
	})

	t.Run("empty payouts reject", func(t *testing.T) {
		empty := ListingDatum{Owner: datum.Owner}
		ctx := withAuthorizer(spendContext(t, ref))
		expectCode(t, validate(p, params, empty, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_EMPTY)
	})

	t.Run("zero-amount payouts reject", func(t *testing.T) {
		zero := ListingDatum{
			Payouts: []Payout{{Address: seller, Amount: 0}},
			Owner:   datum.Owner,
		}
		ctx := withAuthorizer(spendContext(t, ref,
			TxOut{Address: seller, Lovelace: 0, Datum: tag},
		))
		expectCode(t, validate(p, params, zero, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_EMPTY)
	})

	t.Run("non-authorizer signatory takes fee path", func(t *testing.T) {
		ctx := spendContext(t, ref,
			TxOut{Address: seller, Lovelace: 100, Datum: tag},
		)
		ctx.ExtraSignatories = [][28]byte{fillHash28(t, 0xbb)}
		// One output cannot hold both the fee output and the payout.
		expectCode(t, validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx), LIST_ERR_PAYOUT_RANGE)
	})
}

func TestValidateWithdrawOrUpdate(t *testing.T) {
	p := crypto.StdProvider{}
	params := testParams(t)
	ownerKey := fillHash28(t, 0x07)

	t.Run("owner signature accepts", func(t *testing.T) {
		datum := ListingDatum{Owner: Credential{Kind: KeyCredential, Hash: ownerKey}}
		ctx := ScriptContext{ExtraSignatories: [][28]byte{fillHash28(t, 0x01), ownerKey}}
		if err := validate(p, params, datum, WithdrawOrUpdate{}, ctx); err != nil {
			t.Fatalf("expected accept, got %v", err)
		}
	})

	t.Run("missing owner signature rejects", func(t *testing.T) {
		datum := ListingDatum{Owner: Credential{Kind: KeyCredential, Hash: ownerKey}}
		ctx := ScriptContext{ExtraSignatories: [][28]byte{fillHash28(t, 0x01)}}
		expectCode(t, validate(p, params, datum, WithdrawOrUpdate{}, ctx), LIST_ERR_OWNER_UNAUTHORIZED)
	})

	t.Run("script owner in withdrawals accepts", func(t *testing.T) {
		owner := Credential{Kind: ScriptCredential, Hash: fillHash28(t, 0x08)}
		datum := ListingDatum{Owner: owner}
		ctx := ScriptContext{Withdrawals: map[Credential]uint64{owner: 0}}
		if err := validate(p, params, datum, WithdrawOrUpdate{}, ctx); err != nil {
			t.Fatalf("expected accept with zero withdrawal, got %v", err)
		}
	})

	t.Run("script owner absent from withdrawals rejects", func(t *testing.T) {
		owner := Credential{Kind: ScriptCredential, Hash: fillHash28(t, 0x08)}
		other := Credential{Kind: ScriptCredential, Hash: fillHash28(t, 0x09)}
		datum := ListingDatum{Owner: owner}
		ctx := ScriptContext{Withdrawals: map[Credential]uint64{other: 5}}
		expectCode(t, validate(p, params, datum, WithdrawOrUpdate{}, ctx), LIST_ERR_OWNER_UNAUTHORIZED)
	})

	t.Run("owner signature does not satisfy script owner", func(t *testing.T) {
		owner := Credential{Kind: ScriptCredential, Hash: fillHash28(t, 0x08)}
		datum := ListingDatum{Owner: owner}
		ctx := ScriptContext{ExtraSignatories: [][28]byte{fillHash28(t, 0x08)}}
		expectCode(t, validate(p, params, datum, WithdrawOrUpdate{}, ctx), LIST_ERR_OWNER_UNAUTHORIZED)
	})
}

func TestValidateIsPureAndRepeatable(t *testing.T) {
	p := crypto.StdProvider{}
	params := testParams(t)
	seller := keyAddress(t, 0x01)
	ref := OutputReference{TxHash: fillHash32(t, 0x10), Index: 0}
	tag := mustDatumTag(t, ref)
	datum := ListingDatum{
		Payouts: []Payout{{Address: seller, Amount: 100}},
		Owner:   Credential{Kind: KeyCredential, Hash: fillHash28(t, 0x01)},
	}
	fee, err := MarketplaceFee(100)
	if err != nil {
		t.Fatalf("fee: %v", err)
	}
	ctx := spendContext(t, ref,
		TxOut{Address: params.FeeAddress, Lovelace: fee, Datum: tag},
		TxOut{Address: seller, Lovelace: 100, Datum: tag},
	)

	first := Validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx)
	second := Validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, ctx)
	if !first || first != second {
		t.Fatalf("expected repeatable accept, got %v then %v", first, second)
	}
	if len(datum.Payouts) != 1 || len(ctx.Outputs) != 2 {
		t.Fatalf("inputs mutated")
	}

	badCtx := spendContext(t, ref, TxOut{Address: seller, Lovelace: 100, Datum: tag})
	firstReject := Validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, badCtx)
	secondReject := Validate(p, params, datum, Buy{PayoutOutputsOffset: 0}, badCtx)
	if firstReject || firstReject != secondReject {
		t.Fatalf("expected repeatable reject, got %v then %v", firstReject, secondReject)
	}
}

func TestValidateNilRedeemerRejects(t *testing.T) {
	p := crypto.StdProvider{}
	if Validate(p, testParams(t), ListingDatum{}, nil, ScriptContext{}) {
		t.Fatalf("expected reject for nil redeemer")
	}
}
