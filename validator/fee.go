package validator

// MarketplaceFee computes the platform fee from the verified payout sum:
// ((sum * 50) / 49) / 50 with integer truncation at each step, in exactly
// that order. The result approximates 2% of the post-fee total without any
// off-chain quote; reordering the divisions changes rounding and would
// diverge from deployed listings.
func MarketplaceFee(payoutSum uint64) (uint64, error) {
	scaled, err := mulUint64(payoutSum, 50)
	if err != nil {
		return 0, err
	}
	return scaled / 49 / 50, nil
}

// verifyFee checks the designated fee output: the platform's collection
// address, at least the computed fee, and the anti-replay tag.
func verifyFee(out TxOut, fee uint64, expected OutputDatum, feeAddress Address) error {
	if out.Address != feeAddress {
		return serr(LIST_ERR_FEE_MISMATCH, "fee address mismatch")
	}
	if out.Lovelace < fee {
		return serr(LIST_ERR_FEE_MISMATCH, "fee underpaid")
	}
	if out.Datum != expected {
		return serr(LIST_ERR_FEE_MISMATCH, "fee datum tag mismatch")
	}
	return nil
}
