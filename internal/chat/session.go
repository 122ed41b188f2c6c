package chat

import (
	"sync"
	"time"
)

// DefaultSessionTTL is how long a pending selection stays valid.
const DefaultSessionTTL = 5 * time.Minute

// TargetKind distinguishes the two kinds of posting targets.
type TargetKind string

const (
	TargetAccount TargetKind = "account"
	TargetCard    TargetKind = "card"
)

// Target is one account or card the user can post the extracted transaction
// to.
type Target struct {
	Kind TargetKind
	ID   string
	Name string
}

// PendingSelection is an extraction waiting for the user to pick a target by
// numeric reply.
type PendingSelection struct {
	Phone      string
	Extraction *Extraction
	Targets    []Target
	ExpiresAt  time.Time
}

// SessionStore remembers pending selections per phone number. Entries expire
// after a TTL.
type SessionStore interface {
	// Put stores or replaces the pending selection for a phone number.
	Put(phone string, p *PendingSelection)

	// Take removes and returns the pending selection for a phone number.
	// Expired entries are treated as absent.
	Take(phone string) (*PendingSelection, bool)
}

// MemorySessionStore is an in-process SessionStore with a background
// expiry sweep. Entries are scoped to this process: selections pending at
// restart are lost, and a multi-instance deployment needs a shared store
// behind the same interface.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*PendingSelection
	stop    chan struct{}
	once    sync.Once
}

// NewMemorySessionStore creates a session store with the given TTL (zero
// falls back to DefaultSessionTTL) and starts its expiry sweeper.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]*PendingSelection),
		stop:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put implements SessionStore.
func (s *MemorySessionStore) Put(phone string, p *PendingSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Phone = phone
	if cp.ExpiresAt.IsZero() {
		cp.ExpiresAt = time.Now().Add(s.ttl)
	}
	s.entries[phone] = &cp
}

// Take implements SessionStore.
func (s *MemorySessionStore) Take(phone string) (*PendingSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[phone]
	if !ok {
		return nil, false
	}
	delete(s.entries, phone)
	if time.Now().After(p.ExpiresAt) {
		return nil, false
	}
	return p, true
}

// Close stops the expiry sweeper.
func (s *MemorySessionStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemorySessionStore) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for phone, p := range s.entries {
				if now.After(p.ExpiresAt) {
					delete(s.entries, phone)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ SessionStore = (*MemorySessionStore)(nil)
