package repository

import (
	"sync"
	"time"
)

// OTPStore holds pending login codes, keyed by phone number. Entries
// expire after their TTL and are removed on first successful read.
type OTPStore interface {
	Put(phone string, codeHash []byte, ttl time.Duration)
	Get(phone string) ([]byte, bool)
	Delete(phone string)
}

type otpRecord struct {
	hash      []byte
	expiresAt time.Time
}

type MemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]otpRecord
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{codes: make(map[string]otpRecord)}
}

func (s *MemoryOTPStore) Put(phone string, codeHash []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = otpRecord{hash: codeHash, expiresAt: time.Now().Add(ttl)}
}

func (s *MemoryOTPStore) Get(phone string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.codes[phone]
	if !ok {
		return nil, false
	}
	if time.Now().After(rec.expiresAt) {
		delete(s.codes, phone)
		return nil, false
	}
	return rec.hash, true
}

func (s *MemoryOTPStore) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
}
