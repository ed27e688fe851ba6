package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/followup/internal/core/message"
	"github.com/example/followup/internal/ports/secondary"
)

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

// fixedNow returns a clock pinned to 09:30 UTC on today plus offset days.
func fixedNow(offset int) func() time.Time {
	return func() time.Time {
		return today.AddDate(0, 0, offset).Add(9*time.Hour + 30*time.Minute)
	}
}

// Ensure mocks implement the interfaces
var (
	_ secondary.ObligationRepository = (*mockObligationRepository)(nil)
	_ secondary.DeliveryRepository   = (*mockDeliveryRepository)(nil)
	_ secondary.Notifier             = (*mockNotifier)(nil)
)

// mockObligationRepository implements secondary.ObligationRepository for testing.
type mockObligationRepository struct {
	obligations map[string]*secondary.ObligationRecord
	lastFilters secondary.ObligationFilters
	findErr     error
	conflictIDs map[string]bool
	// beforeUpdate lets a test change the stored row between read and mutate.
	beforeUpdate func(*secondary.ObligationRecord)
}

func newMockObligationRepository(records ...*secondary.ObligationRecord) *mockObligationRepository {
	m := &mockObligationRepository{
		obligations: make(map[string]*secondary.ObligationRecord),
		conflictIDs: make(map[string]bool),
	}
	for _, r := range records {
		if r.Version == 0 {
			r.Version = 1
		}
		m.obligations[r.ID] = r
	}
	return m
}

func (m *mockObligationRepository) Create(ctx context.Context, o *secondary.ObligationRecord) error {
	if _, exists := m.obligations[o.ID]; exists {
		return fmt.Errorf("obligation %s already exists", o.ID)
	}
	o.Version = 1
	o.UpdatedAt = o.CreatedAt
	copied := *o
	m.obligations[o.ID] = &copied
	return nil
}

func (m *mockObligationRepository) GetByID(ctx context.Context, id string) (*secondary.ObligationRecord, error) {
	o, ok := m.obligations[id]
	if !ok {
		return nil, fmt.Errorf("obligation %s: %w", id, secondary.ErrNotFound)
	}
	copied := *o
	return &copied, nil
}

func (m *mockObligationRepository) Find(ctx context.Context, filters secondary.ObligationFilters) ([]*secondary.ObligationRecord, error) {
	m.lastFilters = filters
	if m.findErr != nil {
		return nil, m.findErr
	}

	var result []*secondary.ObligationRecord
	for _, o := range m.obligations {
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		if !filters.DueOnOrBefore.IsZero() && o.DueDate.After(filters.DueOnOrBefore) {
			continue
		}
		if !filters.DueOnOrAfter.IsZero() && o.DueDate.Before(filters.DueOnOrAfter) {
			continue
		}
		if !filters.SnoozeOnOrBefore.IsZero() && (o.SnoozeUntil.IsZero() || o.SnoozeUntil.After(filters.SnoozeOnOrBefore)) {
			continue
		}
		copied := *o
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].DueDate.Before(result[j].DueDate)
	})
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockObligationRepository) AtomicUpdate(ctx context.Context, id string, mutate func(*secondary.ObligationRecord) error) (*secondary.ObligationRecord, error) {
	stored, ok := m.obligations[id]
	if !ok {
		return nil, fmt.Errorf("obligation %s: %w", id, secondary.ErrNotFound)
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(stored)
	}

	updated := *stored
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	if m.conflictIDs[id] {
		return nil, fmt.Errorf("obligation %s: %w", id, secondary.ErrConflict)
	}
	updated.Version = stored.Version + 1
	m.obligations[id] = &updated

	copied := updated
	return &copied, nil
}

func (m *mockObligationRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.obligations[id]; !ok {
		return fmt.Errorf("obligation %s: %w", id, secondary.ErrNotFound)
	}
	delete(m.obligations, id)
	return nil
}

// mockDeliveryRepository implements secondary.DeliveryRepository for testing.
// It enforces the one-sent-record-per-channel-per-day rule like the schema does.
type mockDeliveryRepository struct {
	records   []*secondary.DeliveryRecord
	findErrs  map[string]error
	appendErr error
	listErr   error
}

func newMockDeliveryRepository() *mockDeliveryRepository {
	return &mockDeliveryRepository{findErrs: make(map[string]error)}
}

func (m *mockDeliveryRepository) Append(ctx context.Context, d *secondary.DeliveryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if d.Outcome == "sent" {
		for _, r := range m.records {
			if r.Outcome == "sent" && r.ObligationID == d.ObligationID && r.Channel == d.Channel && r.SentOn.Equal(d.SentOn) {
				return fmt.Errorf("obligation %s via %s: %w", d.ObligationID, d.Channel, secondary.ErrDuplicateDelivery)
			}
		}
	}
	copied := *d
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockDeliveryRepository) FindByObligationAndDate(ctx context.Context, obligationID string, day time.Time) ([]*secondary.DeliveryRecord, error) {
	if err := m.findErrs[obligationID]; err != nil {
		return nil, err
	}
	var result []*secondary.DeliveryRecord
	for _, r := range m.records {
		if r.ObligationID == obligationID && r.SentOn.Equal(day) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockDeliveryRepository) List(ctx context.Context, filters secondary.DeliveryFilters) ([]*secondary.DeliveryRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.DeliveryRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filters.ObligationID != "" && r.ObligationID != filters.ObligationID {
			continue
		}
		if filters.Outcome != "" && r.Outcome != filters.Outcome {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// count returns the number of records for an obligation, channel and outcome.
// Empty arguments match anything.
func (m *mockDeliveryRepository) count(obligationID, channel, outcome string) int {
	n := 0
	for _, r := range m.records {
		if (obligationID == "" || r.ObligationID == obligationID) &&
			(channel == "" || r.Channel == channel) &&
			(outcome == "" || r.Outcome == outcome) {
			n++
		}
	}
	return n
}

type sentMessage struct {
	recipient string
	msg       message.Message
}

// mockNotifier implements secondary.Notifier for testing.
type mockNotifier struct {
	channel string
	err     error
	sent    []sentMessage
}

func newMockNotifier(channel string) *mockNotifier {
	return &mockNotifier{channel: channel}
}

func (m *mockNotifier) Channel() string { return m.channel }

func (m *mockNotifier) Send(ctx context.Context, recipient string, msg message.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{recipient: recipient, msg: msg})
	return nil
}

var errStore = errors.New("database is locked")

// pending returns a Pending obligation due offset days from today.
func pending(id string, offset int) *secondary.ObligationRecord {
	return &secondary.ObligationRecord{
		ID:           id,
		Source:       "Meeting",
		Contact:      "Dana",
		ContactEmail: "dana@example.com",
		ContactPhone: "+14155550100",
		Description:  "Send proposal",
		DueDate:      today.AddDate(0, 0, offset),
		Priority:     "High",
		Status:       "Pending",
		CreatedAt:    today.AddDate(0, 0, -10),
	}
}
