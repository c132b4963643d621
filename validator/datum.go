package validator

// Payout is one declared obligation of the listing: who gets paid and the
// minimum lovelace they must receive. Order within the datum is
// significant; satisfaction is positional.
type Payout struct {
	Address Address
	Amount  uint64
}

// ListingDatum is the listing's persistent terms, immutable once the
// escrow output is created.
type ListingDatum struct {
	Payouts []Payout
	Owner   Credential
}

// Redeemer is the closed set of action requests. The dispatcher switches
// exhaustively on the two variants; a new variant cannot be added outside
// this package and cannot reach the dispatcher unhandled.
type Redeemer interface {
	isRedeemer()
}

// Buy requests a purchase. PayoutOutputsOffset says where in the
// transaction's output list the payout-satisfying run begins.
type Buy struct {
	PayoutOutputsOffset int64
}

// WithdrawOrUpdate requests cancellation or a terms change by the owner.
type WithdrawOrUpdate struct{}

func (Buy) isRedeemer()              {}
func (WithdrawOrUpdate) isRedeemer() {}
