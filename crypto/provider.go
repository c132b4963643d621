package crypto

// Provider is the narrow digest interface used by validator code.
// The core never verifies signatures itself; the execution host attests
// signatories, so hashing is the only cryptographic surface needed here.
type Provider interface {
	Blake2b256(input []byte) [32]byte
}
