package plutus

// Data is the subset of the Plutus builtin data model that marketplace
// datums and redeemers are built from: constructors, integers, byte
// strings and lists. Map nodes never occur in this validator's on-chain
// data and are rejected by the codec.
type Data interface {
	isData()
}

// Constr is an applied constructor: alternative index plus field list.
type Constr struct {
	Alternative uint64
	Fields      []Data
}

type Int int64

type Bytes []byte

type List []Data

func (Constr) isData() {}
func (Int) isData()    {}
func (Bytes) isData()  {}
func (List) isData()   {}
