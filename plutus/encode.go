package plutus

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Constructor alternatives are mapped onto CBOR tags the way the ledger
// serialises builtin data: alternatives 0..6 use tags 121..127,
// alternatives 7..127 use tags 1280..1400, and anything larger falls back
// to the general tag 102 form [alternative, fields].
const (
	constrTagBase     = 121
	constrTagHighBase = 1280
	constrTagGeneral  = 102

	maxDirectAlternative = 6
	maxHighAlternative   = 127

	byteChunkLen = 64
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.EncOptions{}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("plutus: enc mode: %v", err))
	}
	encMode = em
}

// Encode serialises d into the exact byte form the ledger produces for
// builtin data: minimal-width integers, 64-byte chunked byte strings, and
// indefinite-length encoding for every non-empty list. The anti-replay tag
// is a hash of these bytes, so any deviation here changes acceptance.
func Encode(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, d Data) error {
	switch v := d.(type) {
	case Int:
		b, err := encMode.Marshal(int64(v))
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case Bytes:
		return encodeBytes(buf, v)
	case List:
		return encodeArray(buf, v)
	case Constr:
		return encodeConstr(buf, v)
	case nil:
		return fmt.Errorf("plutus: nil data")
	default:
		return fmt.Errorf("plutus: unsupported data node %T", d)
	}
}

func encodeBytes(buf *bytes.Buffer, v Bytes) error {
	if len(v) == 0 {
		// A nil slice must not marshal as CBOR null.
		buf.WriteByte(0x40)
		return nil
	}
	if len(v) <= byteChunkLen {
		b, err := encMode.Marshal([]byte(v))
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	// Long byte strings are split into indefinite-length 64-byte chunks.
	buf.WriteByte(0x5f)
	for start := 0; start < len(v); start += byteChunkLen {
		end := start + byteChunkLen
		if end > len(v) {
			end = len(v)
		}
		b, err := encMode.Marshal([]byte(v[start:end]))
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	buf.WriteByte(0xff)
	return nil
}

func encodeArray(buf *bytes.Buffer, items []Data) error {
	if len(items) == 0 {
		buf.WriteByte(0x80)
		return nil
	}
	buf.WriteByte(0x9f)
	for _, item := range items {
		if err := encodeValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(0xff)
	return nil
}

func encodeConstr(buf *bytes.Buffer, c Constr) error {
	var content bytes.Buffer
	var tagNum uint64
	switch {
	case c.Alternative <= maxDirectAlternative:
		tagNum = constrTagBase + c.Alternative
		if err := encodeArray(&content, c.Fields); err != nil {
			return err
		}
	case c.Alternative <= maxHighAlternative:
		tagNum = constrTagHighBase + (c.Alternative - maxDirectAlternative - 1)
		if err := encodeArray(&content, c.Fields); err != nil {
			return err
		}
	default:
		tagNum = constrTagGeneral
		alt, err := encMode.Marshal(c.Alternative)
		if err != nil {
			return err
		}
		content.WriteByte(0x82)
		content.Write(alt)
		if err := encodeArray(&content, c.Fields); err != nil {
			return err
		}
	}
	b, err := encMode.Marshal(cbor.RawTag{Number: tagNum, Content: content.Bytes()})
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
