package plutus

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Decode parses a single serialised data item. Trailing bytes, CBOR maps,
// floats, bignums and unknown tags all reject: on-chain data reaching this
// validator is either exactly well formed or the whole evaluation is void.
func Decode(b []byte) (Data, error) {
	var raw cbor.RawMessage
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("plutus: %w", err)
	}
	return decodeValue(raw)
}

func decodeValue(raw cbor.RawMessage) (Data, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("plutus: empty item")
	}
	switch raw[0] >> 5 {
	case 0, 1: // unsigned / negative integer
		var n int64
		if err := cbor.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("plutus: integer out of range: %w", err)
		}
		return Int(n), nil
	case 2: // byte string
		var bs []byte
		if err := cbor.Unmarshal(raw, &bs); err != nil {
			return nil, fmt.Errorf("plutus: %w", err)
		}
		return Bytes(bs), nil
	case 4: // array
		items, err := decodeArray(raw)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case 6: // tag
		return decodeTagged(raw)
	case 5:
		return nil, fmt.Errorf("plutus: map nodes are not used by marketplace data")
	default:
		return nil, fmt.Errorf("plutus: unsupported major type %d", raw[0]>>5)
	}
}

func decodeArray(raw cbor.RawMessage) ([]Data, error) {
	var elems []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("plutus: %w", err)
	}
	items := make([]Data, 0, len(elems))
	for _, elem := range elems {
		item, err := decodeValue(elem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeTagged(raw cbor.RawMessage) (Data, error) {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("plutus: %w", err)
	}
	switch {
	case tag.Number >= constrTagBase && tag.Number <= constrTagBase+maxDirectAlternative:
		fields, err := decodeArray(tag.Content)
		if err != nil {
			return Constr{}, err
		}
		return Constr{Alternative: tag.Number - constrTagBase, Fields: fields}, nil
	case tag.Number >= constrTagHighBase && tag.Number <= constrTagHighBase+(maxHighAlternative-maxDirectAlternative-1):
		fields, err := decodeArray(tag.Content)
		if err != nil {
			return Constr{}, err
		}
		return Constr{Alternative: tag.Number - constrTagHighBase + maxDirectAlternative + 1, Fields: fields}, nil
	case tag.Number == constrTagGeneral:
		var parts []cbor.RawMessage
		if err := cbor.Unmarshal(tag.Content, &parts); err != nil {
			return Constr{}, fmt.Errorf("plutus: %w", err)
		}
		if len(parts) != 2 {
			return Constr{}, fmt.Errorf("plutus: general constructor needs [alternative, fields]")
		}
		var alt uint64
		if err := cbor.Unmarshal(parts[0], &alt); err != nil {
			return Constr{}, fmt.Errorf("plutus: %w", err)
		}
		fields, err := decodeArray(parts[1])
		if err != nil {
			return Constr{}, err
		}
		return Constr{Alternative: alt, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("plutus: unsupported tag %d", tag.Number)
	}
}
