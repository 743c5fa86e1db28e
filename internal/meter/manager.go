package meter

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrNoSession      = errors.New("unknown session")
	ErrNoMoreJobs     = errors.New("no meters left to read")
	ErrUnknownMeter   = errors.New("meter was not issued to this session")
	ErrReasonRequired = errors.New("a failed reading needs a reason")
)

// Reading is one submitted meter value. Value is negative when the meter
// could not be read, in which case Reason says why.
type Reading struct {
	Meter  string
	Reader string
	When   time.Time
	Value  int
	Reason string
}

// Manager hands out meter-reading jobs to logged-in readers and records the
// readings they submit. All state lives in memory behind one mutex.
type Manager struct {
	mu       sync.Mutex
	accounts map[string]string // username -> hex sha256 of password
	sessions map[string]string // session id -> username
	pending  []string          // meter ids not yet handed out
	issued   map[string]string // meter id -> session holding it
	readings []Reading
}

// NewManager seeds a manager with reader accounts (passwords as
// HashPassword digests) and the pool of meters awaiting a reading.
func NewManager(accounts map[string]string, meters []string) *Manager {
	return &Manager{
		accounts: accounts,
		sessions: make(map[string]string),
		pending:  append([]string(nil), meters...),
		issued:   make(map[string]string),
	}
}

// HashPassword digests a password the way accounts store it.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SequentialMeters builds n meter ids of the form MET000001, MET000002, ...
func SequentialMeters(n int) []string {
	meters := make([]string, n)
	for i := range meters {
		meters[i] = fmt.Sprintf("MET%06d", i+1)
	}
	return meters
}

// Login checks credentials and opens a session.
func (m *Manager) Login(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want, ok := m.accounts[username]
	if !ok || HashPassword(password) != want {
		return "", ErrBadCredentials
	}
	id := uuid.NewString()
	m.sessions[id] = username
	return id, nil
}

// GetJob hands the next unread meter to the session. The meter stays issued
// until a reading for it is submitted.
func (m *Manager) GetJob(session string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session]; !ok {
		return "", ErrNoSession
	}
	if len(m.pending) == 0 {
		return "", ErrNoMoreJobs
	}
	meter := m.pending[0]
	m.pending = m.pending[1:]
	m.issued[meter] = session
	return meter, nil
}

// SubmitReading records a reading for a meter issued to this session.
func (m *Manager) SubmitReading(session, meter string, when time.Time, value int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reader, ok := m.sessions[session]
	if !ok {
		return ErrNoSession
	}
	if m.issued[meter] != session {
		return ErrUnknownMeter
	}
	if value < 0 && reason == "" {
		return ErrReasonRequired
	}
	delete(m.issued, meter)
	m.readings = append(m.readings, Reading{
		Meter:  meter,
		Reader: reader,
		When:   when,
		Value:  value,
		Reason: reason,
	})
	return nil
}

// Status reports batch progress for the session's reader.
func (m *Manager) Status(session string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session]; !ok {
		return "", ErrNoSession
	}
	return fmt.Sprintf("%d readings received, %d meters issued, %d waiting",
		len(m.readings), len(m.issued), len(m.pending)), nil
}

// Dump logs every recorded reading; called once at shutdown.
func (m *Manager) Dump(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.readings {
		logger.Info("reading",
			"meter", r.Meter,
			"reader", r.Reader,
			"when", r.When,
			"value", r.Value,
			"reason", r.Reason,
		)
	}
}
