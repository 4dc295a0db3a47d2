package importer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/leads"
	"OutreachLab/internal/mapping"
	"OutreachLab/internal/models"
)

var (
	ErrSessionNotFound = errors.New("import session not found")
	ErrNotConfirmed    = errors.New("import mapping has not been confirmed")
	ErrCommitted       = errors.New("import already committed")
	ErrImportFailed    = errors.New("import failed, upload the file again")
)

// Session is one file moving through parse, mapping, validation and
// commit. It belongs to the user that uploaded it.
type Session struct {
	ID        string
	UserID    string
	FileName  string
	Table     *csvparser.Table
	Mapper    *mapping.Mapper
	Result    *leads.Result
	JobID     string
	Failure   error
	CreatedAt time.Time
}

// Editable reports whether the mapping may still change or the import be
// committed.
func (s *Session) Editable() error {
	if s.Failure != nil {
		return fmt.Errorf("%w: %v", ErrImportFailed, s.Failure)
	}
	if s.JobID != "" {
		return ErrCommitted
	}
	return nil
}

// Confirm runs the confirmation gate and validates the rows. On a mapping
// error the session is left untouched.
func (s *Session) Confirm() (*leads.Result, error) {
	m, err := s.Mapper.Confirm()
	if err != nil {
		return nil, err
	}

	res, err := leads.Normalize(s.Table.Rows, m)
	if err != nil {
		s.Result = nil
		return &res, err
	}

	s.Result = &res
	return s.Result, nil
}

// Candidates returns the validated leads ready to commit.
func (s *Session) Candidates() ([]models.Lead, error) {
	if s.Result == nil {
		return nil, ErrNotConfirmed
	}
	return s.Result.Leads, nil
}

type Sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*Session
	now func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl: ttl,
		m:   make(map[string]*Session),
		now: time.Now,
	}
}

func (s *Sessions) Create(userID, fileName string, table *csvparser.Table) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileName:  fileName,
		Table:     table,
		Mapper:    mapping.NewMapper(table.Headers),
		CreatedAt: s.now(),
	}
	s.m[sess.ID] = sess
	return sess
}

// Get returns the session if it exists and belongs to userID.
func (s *Sessions) Get(userID, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	sess, ok := s.m[id]
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Update runs fn on the session while holding the store lock.
func (s *Sessions) Update(userID, id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok || sess.UserID != userID {
		return ErrSessionNotFound
	}
	return fn(sess)
}

func (s *Sessions) Delete(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok || sess.UserID != userID {
		return ErrSessionNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Sessions) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.m {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.m, id)
		}
	}
}
