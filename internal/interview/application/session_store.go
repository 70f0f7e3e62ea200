package application

import (
	"errors"
	"sync"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/form"
)

// ErrSessionNotFound は期限切れ・終了済み・他人のセッションを指定した場合に返す。
var ErrSessionNotFound = errors.New("form session not found")

// Session はサーバー側で保持する入力フォーム 1 件分。
// mu serializes every action on the session.
type Session struct {
	ID        string
	Principal Principal

	mu       sync.Mutex
	state    form.State
	lastUsed time.Time
}

// SessionStore holds open form sessions in memory and drops idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewSessionStore は idle 時間操作の無いセッションを破棄するストアを生成する。0 以下なら無期限。
func NewSessionStore(idle time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

func (s *SessionStore) put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	session.lastUsed = now
	s.sessions[session.ID] = session
}

func (s *SessionStore) get(id string, principal Principal) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(session, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	if session.Principal.ID != principal.ID {
		return nil, ErrSessionNotFound
	}
	session.lastUsed = now
	return session, nil
}

func (s *SessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len は保持中のセッション数を返す。
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(session *Session, now time.Time) bool {
	return s.idle > 0 && now.Sub(session.lastUsed) > s.idle
}

func (s *SessionStore) sweepLocked(now time.Time) {
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
		}
	}
}
