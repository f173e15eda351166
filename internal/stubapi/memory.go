package stubapi

import (
	"slices"
	"sync"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// MemoryStore is a mutex-guarded in-memory Store. It is the default for
// tests and for a stub server run without a database path.
type MemoryStore struct {
	mu         sync.Mutex
	activities []model.Activity
	users      map[string]string // username → bcrypt hash
}

// NewMemoryStore constructs a MemoryStore seeded with the given
// activities, preserving their order.
func NewMemoryStore(seed []model.Activity) *MemoryStore {
	s := &MemoryStore{
		activities: make([]model.Activity, 0, len(seed)),
		users:      make(map[string]string),
	}
	for _, a := range seed {
		a.Participants = slices.Clone(a.Participants)
		s.activities = append(s.activities, a)
	}
	return s
}

// Activities returns a copy of the collection in insertion order.
func (s *MemoryStore) Activities() ([]model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		a.Participants = slices.Clone(a.Participants)
		out = append(out, a)
	}
	return out, nil
}

// AddParticipant enrolls email in the named activity.
func (s *MemoryStore) AddParticipant(activity, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(activity)
	if i < 0 {
		return ErrNotFound
	}
	a := &s.activities[i]
	if slices.Contains(a.Participants, email) {
		return ErrAlreadySignedUp
	}
	if len(a.Participants) >= a.MaxParticipants {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// RemoveParticipant withdraws email from the named activity.
func (s *MemoryStore) RemoveParticipant(activity, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(activity)
	if i < 0 {
		return ErrNotFound
	}
	a := &s.activities[i]
	j := slices.Index(a.Participants, email)
	if j < 0 {
		return ErrNotSignedUp
	}
	a.Participants = slices.Delete(a.Participants, j, j+1)
	return nil
}

// CreateUser stores a new account.
func (s *MemoryStore) CreateUser(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = passwordHash
	return nil
}

// UserHash returns the stored password hash for username.
func (s *MemoryStore) UserHash(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.users[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return hash, nil
}

// index returns the position of the named activity, or -1.
func (s *MemoryStore) index(name string) int {
	return slices.IndexFunc(s.activities, func(a model.Activity) bool {
		return a.Name == name
	})
}
