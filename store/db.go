package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adalock.dev/market/validator"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketListings = []byte("listings_by_outpoint")
	bucketSales    = []byte("sales_by_outpoint")
)

// ListingRecord is the off-chain view of one escrowed listing, keyed by
// the outpoint of the locked output.
type ListingRecord struct {
	Datum      validator.ListingDatum
	ListedSlot uint64
}

// SaleRecord marks a listing as settled by a purchase transaction.
type SaleRecord struct {
	SpendTxHash [32]byte
	Total       uint64
	Fee         uint64
	SettledSlot uint64
}

type DB struct {
	dir string
	db  *bolt.DB
}

func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	dir := filepath.Join(datadir, "index")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	bdb, err := bolt.Open(filepath.Join(dir, "kv.db"), 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	d := &DB{dir: dir, db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketListings, bucketSales} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Dir() string { return d.dir }

func (d *DB) PutListing(ref validator.OutputReference, rec ListingRecord) error {
	val, err := encodeListingRecord(rec)
	if err != nil {
		return err
	}
	key := outpointKey(ref)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketListings).Put(key, val)
	})
}

func (d *DB) GetListing(ref validator.OutputReference) (ListingRecord, bool, error) {
	var out ListingRecord
	var ok bool
	key := outpointKey(ref)
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketListings).Get(key)
		if v == nil {
			return nil
		}
		rec, err := decodeListingRecord(v)
		if err != nil {
			return err
		}
		out = rec
		ok = true
		return nil
	})
	return out, ok, err
}

func (d *DB) DeleteListing(ref validator.OutputReference) error {
	key := outpointKey(ref)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketListings).Delete(key)
	})
}

// ForEachListing walks listings in key order. Returning an error from fn
// stops the walk and surfaces that error.
func (d *DB) ForEachListing(fn func(ref validator.OutputReference, rec ListingRecord) error) error {
	return d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketListings).ForEach(func(k, v []byte) error {
			ref, err := decodeOutpointKey(k)
			if err != nil {
				return err
			}
			rec, err := decodeListingRecord(v)
			if err != nil {
				return err
			}
			return fn(ref, rec)
		})
	})
}

func (d *DB) PutSale(ref validator.OutputReference, rec SaleRecord) error {
	val := encodeSaleRecord(rec)
	key := outpointKey(ref)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSales).Put(key, val)
	})
}

func (d *DB) GetSale(ref validator.OutputReference) (SaleRecord, bool, error) {
	var out SaleRecord
	var ok bool
	key := outpointKey(ref)
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSales).Get(key)
		if v == nil {
			return nil
		}
		rec, err := decodeSaleRecord(v)
		if err != nil {
			return err
		}
		out = rec
		ok = true
		return nil
	})
	return out, ok, err
}
