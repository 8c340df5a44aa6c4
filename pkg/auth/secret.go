package auth

import (
	"crypto/subtle"
	"sync"
)

// Secret holds a credential in memory that is locked against swapping
// where the platform supports it, and wiped when destroyed. Callers
// hand the secret to request writers through With, which exposes the
// bytes only for the duration of the callback.
type Secret struct {
	mu     sync.Mutex
	data   []byte
	locked bool
}

// NewSecret copies value into locked memory and wipes nothing: the
// caller remains responsible for its own copy of the input.
func NewSecret(value string) *Secret {
	s := &Secret{data: []byte(value)}
	if len(s.data) > 0 && lockMemory(s.data) == nil {
		s.locked = true
	}
	return s
}

// With calls fn with the secret bytes. The slice must not be retained
// past the call. With returns false without calling fn when the secret
// has been destroyed.
func (s *Secret) With(fn func(value []byte)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return false
	}
	fn(s.data)
	return true
}

// Equal compares the secret against value in constant time.
func (s *Secret) Equal(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return false
	}
	return subtle.ConstantTimeCompare(s.data, []byte(value)) == 1
}

// Destroy wipes and unlocks the secret. Further use yields nothing.
// Destroy is idempotent.
func (s *Secret) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	for i := range s.data {
		s.data[i] = 0
	}
	if s.locked {
		_ = unlockMemory(s.data)
		s.locked = false
	}
	s.data = nil
}

// revealString copies the secret out as a string for signing
// primitives that cannot work in place. Callers keep the copy as
// short-lived as they can.
func (s *Secret) revealString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data)
}

// wipe zeroes a transient buffer a secret was copied into.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
