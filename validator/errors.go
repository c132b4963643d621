package validator

import "fmt"

type ErrorCode string

const (
	LIST_ERR_PARSE              ErrorCode = "LIST_ERR_PARSE"
	LIST_ERR_PURPOSE_INVALID    ErrorCode = "LIST_ERR_PURPOSE_INVALID"
	LIST_ERR_PAYOUT_RANGE       ErrorCode = "LIST_ERR_PAYOUT_RANGE"
	LIST_ERR_PAYOUT_MISMATCH    ErrorCode = "LIST_ERR_PAYOUT_MISMATCH"
	LIST_ERR_PAYOUT_EMPTY       ErrorCode = "LIST_ERR_PAYOUT_EMPTY"
	LIST_ERR_FEE_MISMATCH       ErrorCode = "LIST_ERR_FEE_MISMATCH"
	LIST_ERR_OWNER_UNAUTHORIZED ErrorCode = "LIST_ERR_OWNER_UNAUTHORIZED"
)

// ScriptError carries the internal rejection reason. Callers of Validate
// only ever see the collapsed boolean; the code is surfaced by tooling.
type ScriptError struct {
	Code ErrorCode
	Msg  string
}

func (e *ScriptError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func serr(code ErrorCode, msg string) error {
	return &ScriptError{Code: code, Msg: msg}
}
