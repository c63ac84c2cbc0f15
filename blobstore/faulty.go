package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errInjected = errors.New("blobstore: injected fault")

// Fault defines the failure behavior for matching blobs.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail reads past this offset. -1 to disable.
	FailOnPut      bool
	FailOnList     bool
	Err            error
}

// FaultyStore is a BlobStore wrapper that can inject errors.
type FaultyStore struct {
	inner BlobStore

	mu    sync.Mutex
	rules map[string]Fault // Name substring -> Fault
	hits  int
}

// NewFaultyStore creates a new FaultyStore wrapping inner.
func NewFaultyStore(inner BlobStore) *FaultyStore {
	return &FaultyStore{
		inner: inner,
		rules: make(map[string]Fault),
	}
}

// AddRule injects fault for every blob whose name contains pattern.
func (s *FaultyStore) AddRule(pattern string, fault Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[pattern] = fault
}

// ClearRules removes all rules.
func (s *FaultyStore) ClearRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.rules)
}

// Injected returns the number of faults returned so far.
func (s *FaultyStore) Injected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func (s *FaultyStore) fault(name string) (Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Longest matching pattern wins.
	best, found := "", false
	for pattern := range s.rules {
		if strings.Contains(name, pattern) && (!found || len(pattern) > len(best)) {
			best, found = pattern, true
		}
	}
	if !found {
		return Fault{FailAfterBytes: -1}, false
	}
	rule := s.rules[best]
	if rule.Err == nil {
		rule.Err = errInjected
	}
	return rule, true
}

func (s *FaultyStore) inject(err error) error {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
	return err
}

func (s *FaultyStore) Open(ctx context.Context, name string) (Blob, error) {
	f, ok := s.fault(name)
	if ok && f.FailOnOpen {
		return nil, s.inject(f.Err)
	}
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok || f.FailAfterBytes < 0 {
		return b, nil
	}
	return &faultyBlob{Blob: b, store: s, fault: f}, nil
}

func (s *FaultyStore) Put(ctx context.Context, name string, data []byte) error {
	if f, ok := s.fault(name); ok && f.FailOnPut {
		return s.inject(f.Err)
	}
	return s.inner.Put(ctx, name, data)
}

func (s *FaultyStore) List(ctx context.Context, prefix string) ([]string, error) {
	if f, ok := s.fault(prefix); ok && f.FailOnList {
		return nil, s.inject(f.Err)
	}
	return s.inner.List(ctx, prefix)
}

// faultyBlob hides Mappable so every read goes through ReadAt.
type faultyBlob struct {
	Blob
	store *FaultyStore
	fault Fault
}

func (b *faultyBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off+int64(len(p)) > b.fault.FailAfterBytes {
		return 0, b.store.inject(b.fault.Err)
	}
	return b.Blob.ReadAt(ctx, p, off)
}
