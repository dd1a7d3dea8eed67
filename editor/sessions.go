package editor

import (
	"errors"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"

	"github.com/stuartleeks/home-dash/weather-api/data"
)

var (
	ErrNotFound            = errors.New("session not found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

const idLength = 10

type Session struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps sessions in memory only. A session expires after ttl without access.
type Store struct {
	sessions *data.Cache[string, Session]
	clock    clock.Clock
	mu       sync.Mutex
}

func NewStore(ttl time.Duration, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Store{
		sessions: data.NewCacheWithClock[string, Session](ttl, clk),
		clock:    clk,
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// Create starts a session with the language's placeholder code.
func (s *Store) Create(language string) (Session, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	lang, ok := LanguageByID(language)
	if !ok {
		return Session{}, ErrUnsupportedLanguage
	}

	now := s.clock.Now().UTC()
	session := Session{
		ID:        newID(),
		Language:  lang.ID,
		Code:      lang.Placeholder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions.Set(session.ID, &session)
	s.mu.Unlock()
	return session, nil
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions.Get(id)
	if session == nil {
		return Session{}, ErrNotFound
	}
	return *session, nil
}

func (s *Store) UpdateCode(id, code string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions.Get(id)
	if session == nil {
		return Session{}, ErrNotFound
	}
	updated := *session
	updated.Code = code
	updated.UpdatedAt = s.clock.Now().UTC()
	s.sessions.Set(id, &updated)
	return updated, nil
}

// Prune drops expired sessions.
func (s *Store) Prune() int {
	return s.sessions.Prune()
}
