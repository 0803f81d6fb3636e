package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

var (
	bucketPrepared = []byte("prepared")
	bucketSigned   = []byte("signed")
)

// BoltStore persists envelopes in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPrepared, bucketSigned} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) PutPrepared(p *prepared.PreparedTransactionData) (Key, error) {
	if p == nil {
		return Key{}, fmt.Errorf("%w: prepared transaction", ErrNilParam)
	}
	data, err := encodePrepared(p)
	if err != nil {
		return Key{}, err
	}
	k := KeyOf(p)

	return k, s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPrepared)
		if b.Get(k[:]) != nil {
			return fmt.Errorf("%w: prepared %s", ErrExists, k)
		}
		if err := b.Put(k[:], data); err != nil {
			return fmt.Errorf("store: put prepared: %w", err)
		}
		return nil
	})
}

func (s *BoltStore) GetPrepared(k Key) (*prepared.PreparedTransactionData, error) {
	var p *prepared.PreparedTransactionData
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPrepared).Get(k[:])
		if data == nil {
			return fmt.Errorf("%w: prepared %s", ErrNotFound, k)
		}
		var err error
		p, err = decodePrepared(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BoltStore) PutSigned(payload *block.TransactionPayload) (Key, error) {
	k, err := payloadKey(payload)
	if err != nil {
		return Key{}, err
	}

	return k, s.db.Update(func(tx *bbolt.Tx) error {
		pdata := tx.Bucket(bucketPrepared).Get(k[:])
		if pdata == nil {
			return fmt.Errorf("%w: prepared %s", ErrNotFound, k)
		}
		b := tx.Bucket(bucketSigned)
		if b.Get(k[:]) != nil {
			return fmt.Errorf("%w: signed %s", ErrExists, k)
		}
		data, err := checkSigned(pdata, payload)
		if err != nil {
			return err
		}
		if err := b.Put(k[:], data); err != nil {
			return fmt.Errorf("store: put signed: %w", err)
		}
		return nil
	})
}

func (s *BoltStore) GetSigned(k Key) (*block.TransactionPayload, error) {
	var t *block.TransactionPayload
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSigned).Get(k[:])
		if data == nil {
			return fmt.Errorf("%w: signed %s", ErrNotFound, k)
		}
		var err error
		t, err = decodeSigned(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all entries; bbolt keeps keys sorted.
func (s *BoltStore) List() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		signed := tx.Bucket(bucketSigned)
		return tx.Bucket(bucketPrepared).ForEach(func(k, _ []byte) error {
			if len(k) != len(Key{}) {
				return fmt.Errorf("%w: key of %d bytes", ErrCorrupt, len(k))
			}
			var e Entry
			copy(e.Key[:], k)
			e.Signed = signed.Get(k) != nil
			out = append(out, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}
