package validator

import "adalock.dev/market/crypto"

// Params are the process-wide constants a deployed validator instance is
// built with. They are injected, never global: authorizer key hashes that
// unlock the discounted purchase path, and the marketplace fee address.
type Params struct {
	Authorizers [][28]byte
	FeeAddress  Address
}

// Validate is the decision procedure: a pure function of the listing
// terms, the requested action and the transaction context. Any internal
// rejection collapses to false; there is no partial acceptance and no
// diagnostic surface for callers.
func Validate(p crypto.Provider, params Params, datum ListingDatum, redeemer Redeemer, ctx ScriptContext) bool {
	return validate(p, params, datum, redeemer, ctx) == nil
}

func validate(p crypto.Provider, params Params, datum ListingDatum, redeemer Redeemer, ctx ScriptContext) error {
	switch action := redeemer.(type) {
	case Buy:
		return validateBuy(p, params, datum, action, ctx)
	case WithdrawOrUpdate:
		return validateWithdrawOrUpdate(datum, ctx)
	default:
		// Redeemer is sealed; only a nil interface reaches here.
		return serr(LIST_ERR_PARSE, "missing redeemer")
	}
}

func validateBuy(p crypto.Provider, params Params, datum ListingDatum, action Buy, ctx ScriptContext) error {
	// A purchase is meaningful only as the spend of the listed output.
	if ctx.Purpose.Kind != PurposeSpend {
		return serr(LIST_ERR_PURPOSE_INVALID, "buy requires a spend purpose")
	}
	tagHash, err := DatumTag(p, ctx.Purpose.SpentRef)
	if err != nil {
		return err
	}
	tag := OutputDatum{Kind: DatumHash, Hash: tagHash}

	if hasAuthorizer(params.Authorizers, ctx.ExtraSignatories) {
		// Discounted path: an authorizer co-signed, so the marketplace fee
		// was settled off-chain and no fee output is required. Payouts
		// still carry the anti-replay tag.
		outputs, err := payoutOutputs(ctx.Outputs, action.PayoutOutputsOffset, len(datum.Payouts))
		if err != nil {
			return err
		}
		sum, err := verifyPayouts(outputs, datum.Payouts, &tag)
		if err != nil {
			return err
		}
		if sum == 0 {
			return serr(LIST_ERR_PAYOUT_EMPTY, "payout sum must be positive")
		}
		return nil
	}

	// Full-fee path: the first output of the run pays the marketplace and
	// carries the tag; the remaining outputs satisfy the payouts with no
	// tag requirement. The paths deliberately differ on payout tagging.
	outputs, err := payoutOutputs(ctx.Outputs, action.PayoutOutputsOffset, len(datum.Payouts)+1)
	if err != nil {
		return err
	}
	sum, err := verifyPayouts(outputs[1:], datum.Payouts, nil)
	if err != nil {
		return err
	}
	fee, err := MarketplaceFee(sum)
	if err != nil {
		return err
	}
	return verifyFee(outputs[0], fee, tag, params.FeeAddress)
}

func validateWithdrawOrUpdate(datum ListingDatum, ctx ScriptContext) error {
	owner := datum.Owner
	if owner.Kind == KeyCredential {
		for _, key := range ctx.ExtraSignatories {
			if key == owner.Hash {
				return nil
			}
		}
		return serr(LIST_ERR_OWNER_UNAUTHORIZED, "owner signature missing")
	}
	// Non-key owner: presence in the withdrawal set proves the owning
	// credential's own logic ran and consented. The amount is irrelevant.
	if _, ok := ctx.Withdrawals[owner]; ok {
		return nil
	}
	return serr(LIST_ERR_OWNER_UNAUTHORIZED, "owner credential absent from withdrawals")
}

func hasAuthorizer(authorizers [][28]byte, signatories [][28]byte) bool {
	for _, authorizer := range authorizers {
		for _, key := range signatories {
			if key == authorizer {
				return true
			}
		}
	}
	return false
}
