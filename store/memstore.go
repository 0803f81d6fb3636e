package store

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

// MemStore is an in-memory Store for tests and short-lived processes.
type MemStore struct {
	mu       sync.RWMutex
	prepared map[Key][]byte
	signed   map[Key][]byte
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		prepared: make(map[Key][]byte),
		signed:   make(map[Key][]byte),
	}
}

func (s *MemStore) PutPrepared(p *prepared.PreparedTransactionData) (Key, error) {
	if p == nil {
		return Key{}, fmt.Errorf("%w: prepared transaction", ErrNilParam)
	}
	data, err := encodePrepared(p)
	if err != nil {
		return Key{}, err
	}
	k := KeyOf(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prepared[k]; ok {
		return k, fmt.Errorf("%w: prepared %s", ErrExists, k)
	}
	s.prepared[k] = data
	return k, nil
}

func (s *MemStore) GetPrepared(k Key) (*prepared.PreparedTransactionData, error) {
	s.mu.RLock()
	data, ok := s.prepared[k]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: prepared %s", ErrNotFound, k)
	}
	return decodePrepared(data)
}

func (s *MemStore) PutSigned(payload *block.TransactionPayload) (Key, error) {
	k, err := payloadKey(payload)
	if err != nil {
		return Key{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pdata, ok := s.prepared[k]
	if !ok {
		return k, fmt.Errorf("%w: prepared %s", ErrNotFound, k)
	}
	if _, ok := s.signed[k]; ok {
		return k, fmt.Errorf("%w: signed %s", ErrExists, k)
	}
	data, err := checkSigned(pdata, payload)
	if err != nil {
		return k, err
	}
	s.signed[k] = data
	return k, nil
}

func (s *MemStore) GetSigned(k Key) (*block.TransactionPayload, error) {
	s.mu.RLock()
	data, ok := s.signed[k]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: signed %s", ErrNotFound, k)
	}
	return decodeSigned(data)
}

func (s *MemStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.prepared))
	for k := range s.prepared {
		_, signed := s.signed[k]
		out = append(out, Entry{Key: k, Signed: signed})
	}
	slices.SortFunc(out, func(a, b Entry) int { return bytes.Compare(a.Key[:], b.Key[:]) })
	return out, nil
}
