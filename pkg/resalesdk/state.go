package resalesdk

import (
	"sync"
	"time"

	"github.com/aussiebroadwan/hdbdash/pkg/jwtx"
)

// Snapshot is an immutable view of the session.
type Snapshot struct {
	Authenticated bool
	Username      string
	// AccessExpiresAt is read from the access token's exp claim without
	// verifying it. Zero when unknown.
	AccessExpiresAt time.Time
}

// State holds the session state and notifies subscribers of every change.
// Subscribers are called synchronously, in registration order, after the
// change has been applied and without any lock held, so a subscriber may
// read the state or unsubscribe.
type State struct {
	mu      sync.Mutex
	current Snapshot
	subs    []*subscription
}

type subscription struct {
	fn func(Snapshot)
}

func NewState() *State {
	return &State{}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, other := range s.subs {
				if other == sub {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies mutate and notifies subscribers if anything changed.
func (s *State) update(mutate func(*Snapshot)) {
	s.mu.Lock()
	next := s.current
	mutate(&next)
	if next == s.current {
		s.mu.Unlock()
		return
	}
	s.current = next
	subs := make([]*subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

func (s *State) set(snap Snapshot) {
	s.update(func(cur *Snapshot) { *cur = snap })
}

func (s *State) clear() {
	s.set(Snapshot{})
}

// tokenRefreshed records the expiry of a new access token. The logged-in
// flag is left alone: a refresh during rehydration happens before the
// profile has been confirmed.
func (s *State) tokenRefreshed(access string) {
	exp := accessExpiry(access)
	s.update(func(cur *Snapshot) {
		if cur.Authenticated {
			cur.AccessExpiresAt = exp
		}
	})
}

func (s *State) renamed(username string) {
	s.update(func(cur *Snapshot) {
		if cur.Authenticated {
			cur.Username = username
		}
	})
}

func accessExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims, err := jwtx.Inspect(token)
	if err != nil {
		return time.Time{}
	}
	return claims.Expiry()
}
