package validator

// addUint64 returns a+b or LIST_ERR_PARSE if the addition would overflow.
func addUint64(a, b uint64) (uint64, error) {
	if b > (^uint64(0) - a) {
		return 0, serr(LIST_ERR_PARSE, "u64 add overflow")
	}
	return a + b, nil
}

// mulUint64 returns a*b or LIST_ERR_PARSE if the product would overflow.
func mulUint64(a, b uint64) (uint64, error) {
	if a != 0 && b > (^uint64(0))/a {
		return 0, serr(LIST_ERR_PARSE, "u64 mul overflow")
	}
	return a * b, nil
}
