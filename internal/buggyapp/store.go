package buggyapp

import (
	"html"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"

	"github.com/kuitang/buggy-e2e/internal/errs"
)

type user struct {
	username string
	hash     []byte
	profile  Profile
}

// Store holds users and sessions in memory.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*user
	sessions map[string]string // session id -> username
	cost     int
	policy   *bluemonday.Policy
}

// NewStore creates an empty store hashing with the given bcrypt cost.
func NewStore(cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		cost:     cost,
		policy:   bluemonday.StrictPolicy(),
	}
}

// AddUser registers username. It fails with AlreadyExists if the name is taken.
func (s *Store) AddUser(username, password string, profile Profile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return errs.Wrap(errs.Internal, "hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return errs.New(errs.AlreadyExists, MsgUserExists)
	}
	s.users[username] = &user{username: username, hash: hash, profile: s.sanitize(profile)}
	return nil
}

// Exists reports whether username is registered.
func (s *Store) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// CheckPassword reports whether password is correct for username.
func (s *Store) CheckPassword(username, password string) bool {
	s.mu.RLock()
	u, ok := s.users[username]
	var hash []byte
	if ok {
		hash = u.hash
	}
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// SetPassword replaces the password of username.
func (s *Store) SetPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return errs.Wrap(errs.Internal, "hash password", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return errs.New(errs.Unauthenticated, MsgLoginRequired)
	}
	u.hash = hash
	return nil
}

// Profile returns the profile of username.
func (s *Store) Profile(username string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return Profile{}, false
	}
	return u.profile, true
}

// SetProfile stores p for username with markup stripped from free-text fields.
func (s *Store) SetProfile(username string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return errs.New(errs.Unauthenticated, MsgLoginRequired)
	}
	u.profile = s.sanitize(p)
	return nil
}

// sanitize strips markup but keeps the text as typed. The policy's output is
// HTML-escaped, so it is decoded again; templates and the page script escape
// on output.
func (s *Store) sanitize(p Profile) Profile {
	for _, f := range []*string{&p.FirstName, &p.LastName, &p.Address, &p.Phone} {
		*f = html.UnescapeString(s.policy.Sanitize(*f))
	}
	return p
}

// NewSession creates a session for username and returns its id.
func (s *Store) NewSession(username string) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = username
	s.mu.Unlock()
	return id
}

// SessionUser returns the username of session id.
func (s *Store) SessionUser(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.sessions[id]
	return username, ok
}

// EndSession deletes session id.
func (s *Store) EndSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
