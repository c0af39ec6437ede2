// Package testutil provides in-memory fakes for the notification ports.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	appnotification "github.com/fundhive/fundhive/internal/application/notification"
	"github.com/fundhive/fundhive/internal/domain/notification"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

// MockMailJobRepository keeps jobs in memory and enforces one queued job per group.
type MockMailJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*notification.MailJob
	// order keeps insertion order for ListDue ties.
	order []string

	// CreateErrors are returned by Create, one per call, before it succeeds.
	CreateErrors []error
	CreateCalls  int
}

func NewMockMailJobRepository() *MockMailJobRepository {
	return &MockMailJobRepository{jobs: make(map[string]*notification.MailJob)}
}

func (m *MockMailJobRepository) Create(ctx context.Context, job *notification.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if len(m.CreateErrors) > 0 {
		err := m.CreateErrors[0]
		m.CreateErrors = m.CreateErrors[1:]
		return err
	}
	if g := job.ActiveGroup(); g != nil {
		for _, existing := range m.jobs {
			if eg := existing.ActiveGroup(); eg != nil && *eg == *g {
				return notification.ErrGroupQueued
			}
		}
	}
	m.jobs[job.ID()] = job
	m.order = append(m.order, job.ID())
	return nil
}

func (m *MockMailJobRepository) Update(ctx context.Context, job *notification.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID()]; !ok {
		return apperrors.NewNotFoundError("mail job not found", job.ID())
	}
	m.jobs[job.ID()] = job
	return nil
}

func (m *MockMailJobRepository) GetByID(ctx context.Context, id string) (*notification.MailJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("mail job not found", id)
	}
	return job, nil
}

func (m *MockMailJobRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*notification.MailJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*notification.MailJob
	for _, id := range m.order {
		job := m.jobs[id]
		if job.ActiveGroup() != nil && !job.NextAttemptAt().After(now) {
			due = append(due, job)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextAttemptAt().Before(due[j].NextAttemptAt())
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// All returns every stored job in insertion order.
func (m *MockMailJobRepository) All() []*notification.MailJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*notification.MailJob, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.jobs[id])
	}
	return out
}

// MockGroupGate remembers groups until they expire on its clock.
type MockGroupGate struct {
	mu   sync.Mutex
	seen map[string]time.Time
	Now  func() time.Time
	Err  error
}

func NewMockGroupGate() *MockGroupGate {
	return &MockGroupGate{seen: make(map[string]time.Time), Now: time.Now}
}

func (g *MockGroupGate) TryAcquire(ctx context.Context, group string, window time.Duration) (bool, error) {
	if g.Err != nil {
		return false, g.Err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.Now()
	if until, ok := g.seen[group]; ok && now.Before(until) {
		return false, nil
	}
	g.seen[group] = now.Add(window)
	return true, nil
}

func (g *MockGroupGate) Release(ctx context.Context, group string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, group)
	return nil
}

// MockTransport records sent messages. Fail makes the next sends fail.
type MockTransport struct {
	mu   sync.Mutex
	sent []appnotification.Message
	Fail error
}

func (t *MockTransport) Send(ctx context.Context, msg appnotification.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Fail != nil {
		return t.Fail
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *MockTransport) Sent() []appnotification.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]appnotification.Message, len(t.sent))
	copy(out, t.sent)
	return out
}

// MockDirectory resolves users from a fixed map.
type MockDirectory map[uint]appnotification.Recipient

func (d MockDirectory) Lookup(ctx context.Context, userID uint) (appnotification.Recipient, error) {
	r, ok := d[userID]
	if !ok {
		return appnotification.Recipient{}, apperrors.NewNotFoundError("user not found", fmt.Sprint(userID))
	}
	return r, nil
}

// ErrStorageDown is a convenience transient error for retry tests.
var ErrStorageDown = errors.New("storage unavailable")
