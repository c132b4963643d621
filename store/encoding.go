package store

import (
	"encoding/binary"
	"fmt"

	"adalock.dev/market/validator"
)

// Key layout: tx_hash 32 | index u64be. Big-endian index keeps outputs of
// one transaction adjacent and ordered under bbolt's byte-sorted cursor.
func outpointKey(ref validator.OutputReference) []byte {
	out := make([]byte, 40)
	copy(out[:32], ref.TxHash[:])
	binary.BigEndian.PutUint64(out[32:], ref.Index)
	return out
}

func decodeOutpointKey(k []byte) (validator.OutputReference, error) {
	if len(k) != 40 {
		return validator.OutputReference{}, fmt.Errorf("outpoint key: bad length %d", len(k))
	}
	var ref validator.OutputReference
	copy(ref.TxHash[:], k[:32])
	ref.Index = binary.BigEndian.Uint64(k[32:])
	return ref, nil
}

const (
	credentialLen = 1 + 28          // kind u8 | hash 28
	payoutLen     = credentialLen + // payment
		1 + credentialLen + // has_stake u8 | stake
		8 // amount u64le
	listingHeaderLen = 8 + credentialLen + 2 // listed_slot u64le | owner | payout_count u16le
	saleRecordLen    = 32 + 8 + 8 + 8
)

func putCredential(dst []byte, cred validator.Credential) {
	dst[0] = byte(cred.Kind)
	copy(dst[1:credentialLen], cred.Hash[:])
}

func getCredential(src []byte) (validator.Credential, error) {
	kind := validator.CredentialKind(src[0])
	if kind != validator.KeyCredential && kind != validator.ScriptCredential {
		return validator.Credential{}, fmt.Errorf("listing record: bad credential kind %d", src[0])
	}
	cred := validator.Credential{Kind: kind}
	copy(cred.Hash[:], src[1:credentialLen])
	return cred, nil
}

// Layout:
// listed_slot u64le | owner credential | payout_count u16le | payouts
// payout: payment credential | has_stake u8 | stake credential | amount u64le
func encodeListingRecord(rec ListingRecord) ([]byte, error) {
	if len(rec.Datum.Payouts) > 0xffff {
		return nil, fmt.Errorf("listing record: too many payouts")
	}
	out := make([]byte, listingHeaderLen+payoutLen*len(rec.Datum.Payouts))
	binary.LittleEndian.PutUint64(out[0:8], rec.ListedSlot)
	putCredential(out[8:], rec.Datum.Owner)
	binary.LittleEndian.PutUint16(out[8+credentialLen:], uint16(len(rec.Datum.Payouts)))
	off := listingHeaderLen
	for _, payout := range rec.Datum.Payouts {
		putCredential(out[off:], payout.Address.Payment)
		hasStake := byte(0)
		if payout.Address.HasStake {
			hasStake = 1
		}
		out[off+credentialLen] = hasStake
		putCredential(out[off+credentialLen+1:], payout.Address.Stake)
		binary.LittleEndian.PutUint64(out[off+payoutLen-8:], payout.Amount)
		off += payoutLen
	}
	return out, nil
}

func decodeListingRecord(b []byte) (ListingRecord, error) {
	if len(b) < listingHeaderLen {
		return ListingRecord{}, fmt.Errorf("listing record: truncated")
	}
	var rec ListingRecord
	rec.ListedSlot = binary.LittleEndian.Uint64(b[0:8])
	owner, err := getCredential(b[8:])
	if err != nil {
		return ListingRecord{}, err
	}
	rec.Datum.Owner = owner
	count := int(binary.LittleEndian.Uint16(b[8+credentialLen:]))
	if listingHeaderLen+payoutLen*count != len(b) {
		return ListingRecord{}, fmt.Errorf("listing record: bad payout count")
	}
	rec.Datum.Payouts = make([]validator.Payout, 0, count)
	off := listingHeaderLen
	for i := 0; i < count; i++ {
		payment, err := getCredential(b[off:])
		if err != nil {
			return ListingRecord{}, err
		}
		hasStake := b[off+credentialLen]
		if hasStake > 1 {
			return ListingRecord{}, fmt.Errorf("listing record: bad stake flag")
		}
		stake, err := getCredential(b[off+credentialLen+1:])
		if err != nil {
			return ListingRecord{}, err
		}
		addr := validator.Address{Payment: payment}
		if hasStake == 1 {
			addr.HasStake = true
			addr.Stake = stake
		}
		rec.Datum.Payouts = append(rec.Datum.Payouts, validator.Payout{
			Address: addr,
			Amount:  binary.LittleEndian.Uint64(b[off+payoutLen-8 : off+payoutLen]),
		})
		off += payoutLen
	}
	return rec, nil
}

// Layout: spend_tx_hash 32 | total u64le | fee u64le | settled_slot u64le.
func encodeSaleRecord(rec SaleRecord) []byte {
	out := make([]byte, saleRecordLen)
	copy(out[:32], rec.SpendTxHash[:])
	binary.LittleEndian.PutUint64(out[32:40], rec.Total)
	binary.LittleEndian.PutUint64(out[40:48], rec.Fee)
	binary.LittleEndian.PutUint64(out[48:56], rec.SettledSlot)
	return out
}

func decodeSaleRecord(b []byte) (SaleRecord, error) {
	if len(b) != saleRecordLen {
		return SaleRecord{}, fmt.Errorf("sale record: bad length %d", len(b))
	}
	var rec SaleRecord
	copy(rec.SpendTxHash[:], b[:32])
	rec.Total = binary.LittleEndian.Uint64(b[32:40])
	rec.Fee = binary.LittleEndian.Uint64(b[40:48])
	rec.SettledSlot = binary.LittleEndian.Uint64(b[48:56])
	return rec, nil
}
