package validator

// payoutOutputs returns the contiguous run of want outputs starting at
// offset. The caller decides want (payout count, plus one when a leading
// marketplace-fee output is owed); no amounts or destinations are checked
// here. A slice that cannot be formed rejects.
func payoutOutputs(outputs []TxOut, offset int64, want int) ([]TxOut, error) {
	if offset < 0 || offset > int64(len(outputs)) {
		return nil, serr(LIST_ERR_PAYOUT_RANGE, "offset out of range")
	}
	end := offset + int64(want)
	if end > int64(len(outputs)) {
		return nil, serr(LIST_ERR_PAYOUT_RANGE, "insufficient outputs at offset")
	}
	return outputs[offset:end], nil
}

// verifyPayouts checks each declared payout against the output at the same
// position: same address, at least the declared lovelace, and (when
// expected is non-nil) exactly the expected attached datum. A nil expected
// datum skips the tag check entirely; the full-fee path enforces the tag
// on the fee output only. Matching is positional, never by destination
// search; one linear pass bounded by the payout count. All pairs must
// verify or the whole check fails, and on success the sum of the declared
// amounts is returned.
func verifyPayouts(outputs []TxOut, payouts []Payout, expected *OutputDatum) (uint64, error) {
	if len(outputs) != len(payouts) {
		return 0, serr(LIST_ERR_PAYOUT_MISMATCH, "output run length mismatch")
	}
	var sum uint64
	for i := range payouts {
		out := outputs[i]
		payout := payouts[i]
		if out.Address != payout.Address {
			return 0, serr(LIST_ERR_PAYOUT_MISMATCH, "payout address mismatch")
		}
		if out.Lovelace < payout.Amount {
			return 0, serr(LIST_ERR_PAYOUT_MISMATCH, "payout underpaid")
		}
		if expected != nil && out.Datum != *expected {
			return 0, serr(LIST_ERR_PAYOUT_MISMATCH, "payout datum tag mismatch")
		}
		var err error
		sum, err = addUint64(sum, payout.Amount)
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}
