package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/store"
)

// StagingTTL is how long a scanned code waits for confirmation.
const StagingTTL = 5 * time.Minute

const StatusPresent = "present"

var ErrNotStaged = errors.New("scan expired or already confirmed, please scan again")

type Staged struct {
	Token     string    `json:"token"`
	Payload   Payload   `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Staged) Label() string { return s.Payload.Label() }

type Scanner struct {
	store store.Store
	loc   *time.Location
	ttl   time.Duration

	mu     sync.Mutex
	staged map[string]Staged
}

// NewScanner records scans in st, dating them in loc.
func NewScanner(st store.Store, loc *time.Location) *Scanner {
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{store: st, loc: loc, ttl: StagingTTL, staged: make(map[string]Staged)}
}

// Stage decodes text and holds it until Confirm. Repeated reads of the same code
// only stage it again; nothing is written.
func (sc *Scanner) Stage(text string) (Staged, error) {
	p, err := Decode(text)
	if err != nil {
		return Staged{}, err
	}
	now := core.NowFunc()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.purge(now)
	s := Staged{Token: uuid.NewString(), Payload: p, ExpiresAt: now.Add(sc.ttl)}
	sc.staged[s.Token] = s
	return s, nil
}

// Take removes and returns the staged scan for token.
func (sc *Scanner) Take(token string) (Staged, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.purge(core.NowFunc())
	s, ok := sc.staged[token]
	if !ok {
		return Staged{}, ErrNotStaged
	}
	delete(sc.staged, token)
	return s, nil
}

// Pending returns the number of scans awaiting confirmation.
func (sc *Scanner) Pending() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.purge(core.NowFunc())
	return len(sc.staged)
}

func (sc *Scanner) purge(now time.Time) {
	for token, s := range sc.staged {
		if !now.Before(s.ExpiresAt) {
			delete(sc.staged, token)
		}
	}
}

// Confirm writes one present row for today and returns the confirmation message.
func (sc *Scanner) Confirm(ctx context.Context, s Staged, sess *session.Session) (string, error) {
	if sess == nil || sess.Role == "" {
		return "", core.ErrForbidden
	}
	row := schema.Row{
		"student_id":      schema.String(s.Payload.StudentID),
		"attendance_date": schema.String(core.Today(sc.loc)),
		"status":          schema.String(StatusPresent),
		"remarks":         schema.String("QR scan by " + sess.Role.String()),
	}
	if err := sc.store.InsertRecord(ctx, schema.TableAttendance, row); err != nil {
		return "", core.NewMutationError("Insert error", err)
	}
	return fmt.Sprintf("Attendance marked PRESENT for %s (%s)", s.Payload.Name, s.Payload.StudentID), nil
}

// ConfirmToken takes the staged scan for token and confirms it. A failed write
// other than a duplicate keeps the scan staged so confirm can be retried.
func (sc *Scanner) ConfirmToken(ctx context.Context, token string, sess *session.Session) (string, error) {
	s, err := sc.Take(token)
	if err != nil {
		return "", err
	}
	msg, err := sc.Confirm(ctx, s, sess)
	if err != nil && !store.IsUniqueViolation(err) {
		sc.restage(s)
	}
	return msg, err
}

// restage puts back s unless it expired meanwhile.
func (sc *Scanner) restage(s Staged) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	now := core.NowFunc()
	sc.purge(now)
	if now.Before(s.ExpiresAt) {
		sc.staged[s.Token] = s
	}
}
