// Package testutil provides in-memory implementations of the payment
// repositories for use case tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fundhive/fundhive/internal/domain/activity"
	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	"github.com/fundhive/fundhive/internal/shared/errors"
)

// MockDonationRepository stores copies of donations so that every load
// returns a fresh aggregate, like a database would.
type MockDonationRepository struct {
	mu        sync.RWMutex
	donations map[uint]*donation.Donation
	nextID    uint

	// Error injection for testing
	UpdateError error
}

func NewMockDonationRepository() *MockDonationRepository {
	return &MockDonationRepository{donations: make(map[uint]*donation.Donation)}
}

func cloneDonation(d *donation.Donation) *donation.Donation {
	return donation.Reconstruct(donation.ReconstructParams{
		ID:            d.ID(),
		OrderID:       d.OrderID(),
		Kind:          d.Kind(),
		CampaignID:    d.CampaignID(),
		UserID:        d.UserID(),
		Amount:        d.Amount(),
		Gateway:       d.Gateway(),
		TransactionID: d.TransactionID(),
		IsOffline:     d.IsOffline(),
		HasReward:     d.HasReward(),
		Status:        d.Status(),
		CompletedAt:   d.CompletedAt(),
		Version:       d.Version(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	})
}

func (m *MockDonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.donations {
		if existing.OrderID() == d.OrderID() {
			return fmt.Errorf("failed to create donation: duplicate order id %s", d.OrderID())
		}
	}
	if d.ID() == 0 {
		m.nextID++
		if err := d.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.donations[d.ID()] = cloneDonation(d)
	return nil
}

func (m *MockDonationRepository) Update(ctx context.Context, d *donation.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	stored, ok := m.donations[d.ID()]
	if !ok {
		return errors.NewNotFoundError("donation not found")
	}
	if stored.Version() != d.Version()-1 {
		return errors.NewConflictError("donation was modified concurrently")
	}
	m.donations[d.ID()] = cloneDonation(d)
	return nil
}

func (m *MockDonationRepository) SetTransactionID(ctx context.Context, id uint, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.donations[id]
	if !ok {
		return errors.NewNotFoundError("donation not found")
	}
	cp := cloneDonation(stored)
	cp.AttachTransaction(transactionID)
	m.donations[id] = cp
	return nil
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id uint) (*donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.donations[id]
	if !ok {
		return nil, errors.NewNotFoundError("donation not found")
	}
	return cloneDonation(d), nil
}

func (m *MockDonationRepository) GetByOrderID(ctx context.Context, orderID string) (*donation.Donation, error) {
	return m.find(func(d *donation.Donation) bool { return d.OrderID() == orderID })
}

func (m *MockDonationRepository) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*donation.Donation, error) {
	return m.find(func(d *donation.Donation) bool {
		return d.Gateway() == gateway && d.TransactionID() != "" && d.TransactionID() == transactionID
	})
}

func (m *MockDonationRepository) find(match func(*donation.Donation) bool) (*donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.donations {
		if match(d) {
			return cloneDonation(d), nil
		}
	}
	return nil, errors.NewNotFoundError("donation not found")
}

func (m *MockDonationRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*donation.Donation
	for _, d := range m.donations {
		if d.Status() == donation.StatusPending && d.CreatedAt().Before(cutoff) {
			out = append(out, cloneDonation(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockDonationRepository) ListBackerUserIDs(ctx context.Context, campaignID uint) ([]uint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[uint]bool)
	var out []uint
	for _, d := range m.donations {
		if d.CampaignID() != campaignID || d.UserID() == 0 || seen[d.UserID()] {
			continue
		}
		switch d.Status() {
		case donation.StatusCompleted, donation.StatusBacked:
			seen[d.UserID()] = true
			out = append(out, d.UserID())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Stored returns the persisted copy of a donation.
func (m *MockDonationRepository) Stored(id uint) *donation.Donation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.donations[id]; ok {
		return cloneDonation(d)
	}
	return nil
}

// MockCampaignRepository is an in-memory campaign.Repository.
type MockCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[uint]*campaign.Campaign
	nextID    uint
}

func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{campaigns: make(map[uint]*campaign.Campaign)}
}

func cloneCampaign(c *campaign.Campaign) *campaign.Campaign {
	return campaign.Reconstruct(campaign.ReconstructParams{
		ID:            c.ID(),
		OwnerUserID:   c.OwnerUserID(),
		Title:         c.Title(),
		Goal:          c.Goal(),
		Raised:        c.Raised(),
		Status:        c.Status(),
		GoalReachedAt: c.GoalReachedAt(),
		EndsAt:        c.EndsAt(),
		Version:       c.Version(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	})
}

func (m *MockCampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID() == 0 {
		m.nextID++
		if err := c.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.campaigns[c.ID()] = cloneCampaign(c)
	return nil
}

func (m *MockCampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.campaigns[c.ID()]
	if !ok {
		return errors.NewNotFoundError("campaign not found")
	}
	if stored.Version() != c.Version()-1 {
		return errors.NewConflictError("campaign was modified concurrently")
	}
	m.campaigns[c.ID()] = cloneCampaign(c)
	return nil
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uint) (*campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.campaigns[id]
	if !ok {
		return nil, errors.NewNotFoundError("campaign not found")
	}
	return cloneCampaign(c), nil
}

func (m *MockCampaignRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*campaign.Campaign
	for _, c := range m.campaigns {
		if c.IsExpired(now) {
			out = append(out, cloneCampaign(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockTransitionLedger enforces uniqueness of (gateway, transaction id, status).
type MockTransitionLedger struct {
	mu      sync.Mutex
	entries []donation.LedgerEntry
	keys    map[string]bool
}

func NewMockTransitionLedger() *MockTransitionLedger {
	return &MockTransitionLedger{keys: make(map[string]bool)}
}

func (l *MockTransitionLedger) Append(ctx context.Context, entry donation.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := entry.Gateway + "|" + entry.TransactionID + "|" + string(entry.ToStatus)
	if l.keys[key] {
		return donation.ErrAlreadyRecorded
	}
	l.keys[key] = true
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MockTransitionLedger) Entries() []donation.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]donation.LedgerEntry(nil), l.entries...)
}

// MockLocker is a keyed mutex.
type MockLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMockLocker() *MockLocker {
	return &MockLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// MockActivityRepository keeps timeline entries in insertion order.
type MockActivityRepository struct {
	mu      sync.Mutex
	records []*activity.Record
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Create(ctx context.Context, r *activity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uint(len(m.records) + 1)
	m.records = append(m.records, r)
	return nil
}

func (m *MockActivityRepository) ListByCampaign(ctx context.Context, campaignID uint, limit int) ([]*activity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*activity.Record
	for _, r := range m.records {
		if r.CampaignID == campaignID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockActivityRepository) ListByObject(ctx context.Context, objectType activity.ObjectType, objectID uint) ([]*activity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*activity.Record
	for _, r := range m.records {
		if r.ObjectType == objectType && r.ObjectID == objectID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Records returns every stored entry.
func (m *MockActivityRepository) Records() []*activity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*activity.Record(nil), m.records...)
}
