package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
)

func newTestObligationService(obligations *mockObligationRepository) *ObligationServiceImpl {
	svc := NewObligationService(obligations, nil)
	svc.now = fixedNow(0)
	return svc
}

func TestObligationService_CreateObligation(t *testing.T) {
	tests := []struct {
		name         string
		req          primary.CreateObligationRequest
		wantErr      string
		wantPriority string
	}{
		{
			name: "creates pending obligation with default priority",
			req: primary.CreateObligationRequest{
				Source:       "Phone",
				Contact:      "  Dana  ",
				ContactEmail: "dana@example.com",
				Description:  "Call back",
				DueDate:      today.AddDate(0, 0, 2),
			},
			wantPriority: "Medium",
		},
		{
			name: "rejects unknown source",
			req: primary.CreateObligationRequest{
				Source:      "Fax",
				Contact:     "Dana",
				Description: "Call back",
				DueDate:     today,
			},
			wantErr: "unsupported source",
		},
		{
			name: "rejects invalid phone",
			req: primary.CreateObligationRequest{
				Source:       "SMS",
				Contact:      "Dana",
				ContactPhone: "555-0100",
				Description:  "Text back",
				DueDate:      today,
			},
			wantErr: "invalid contact phone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obligations := newMockObligationRepository()
			svc := newTestObligationService(obligations)

			got, err := svc.CreateObligation(context.Background(), tt.req)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				if len(obligations.obligations) != 0 {
					t.Error("nothing should be stored on validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateObligation failed: %v", err)
			}
			if got.ID == "" {
				t.Error("expected generated ID")
			}
			if got.Status != "Pending" {
				t.Errorf("Status = %q, want Pending", got.Status)
			}
			if got.Contact != "Dana" {
				t.Errorf("Contact = %q, want trimmed %q", got.Contact, "Dana")
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("Priority = %q, want %q", got.Priority, tt.wantPriority)
			}
			if _, ok := obligations.obligations[got.ID]; !ok {
				t.Error("obligation not stored")
			}
		})
	}
}

func TestObligationService_SnoozeObligation(t *testing.T) {
	tests := []struct {
		name    string
		record  *secondary.ObligationRecord
		until   int
		wantErr string
	}{
		{"snoozes pending", pending("OBL-001", 2), 3, ""},
		{"extends snooze", snoozed("OBL-001", 2, 1), 4, ""},
		{"rejects today", pending("OBL-001", 2), 0, "snooze date must be after today"},
		{"rejects overdue pending", pending("OBL-001", -1), 3, "Reschedule it first"},
		{"rejects done", func() *secondary.ObligationRecord {
			o := pending("OBL-001", 2)
			o.Status = "Done"
			return o
		}(), 3, "can only snooze Pending or Snoozed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obligations := newMockObligationRepository(tt.record)
			svc := newTestObligationService(obligations)

			got, err := svc.SnoozeObligation(context.Background(), "OBL-001", today.AddDate(0, 0, tt.until))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SnoozeObligation failed: %v", err)
			}
			if got.Status != "Snoozed" {
				t.Errorf("Status = %q, want Snoozed", got.Status)
			}
			if !got.SnoozeUntil.Equal(today.AddDate(0, 0, tt.until)) {
				t.Errorf("SnoozeUntil = %v, want today+%d", got.SnoozeUntil, tt.until)
			}
		})
	}
}

func TestObligationService_CompleteObligation(t *testing.T) {
	obligations := newMockObligationRepository(snoozed("OBL-001", 2, 1))
	svc := newTestObligationService(obligations)

	got, err := svc.CompleteObligation(context.Background(), "OBL-001")
	if err != nil {
		t.Fatalf("CompleteObligation failed: %v", err)
	}
	if got.Status != "Done" {
		t.Errorf("Status = %q, want Done", got.Status)
	}
	if !got.SnoozeUntil.IsZero() {
		t.Errorf("SnoozeUntil = %v, want cleared", got.SnoozeUntil)
	}
	if got.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}

	if _, err := svc.CompleteObligation(context.Background(), "OBL-001"); err == nil {
		t.Error("expected error completing a done obligation")
	}
}

func TestObligationService_RescheduleObligation(t *testing.T) {
	obligations := newMockObligationRepository(snoozed("OBL-001", -3, 2))
	svc := newTestObligationService(obligations)

	got, err := svc.RescheduleObligation(context.Background(), "OBL-001", today.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("RescheduleObligation failed: %v", err)
	}
	if got.Status != "Pending" {
		t.Errorf("Status = %q, want Pending", got.Status)
	}
	if !got.DueDate.Equal(today.AddDate(0, 0, 7)) {
		t.Errorf("DueDate = %v, want today+7", got.DueDate)
	}
	if !got.SnoozeUntil.IsZero() {
		t.Errorf("SnoozeUntil = %v, want cleared", got.SnoozeUntil)
	}

	if _, err := svc.RescheduleObligation(context.Background(), "OBL-001", today.AddDate(0, 0, -1)); err == nil {
		t.Error("expected error rescheduling into the past")
	}
}

func TestObligationService_NotFound(t *testing.T) {
	svc := newTestObligationService(newMockObligationRepository())

	if _, err := svc.GetObligation(context.Background(), "OBL-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("GetObligation err = %v, want ErrNotFound", err)
	}
	if _, err := svc.CompleteObligation(context.Background(), "OBL-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("CompleteObligation err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteObligation(context.Background(), "OBL-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("DeleteObligation err = %v, want ErrNotFound", err)
	}
}

func TestObligationService_ListObligations(t *testing.T) {
	obligations := newMockObligationRepository(pending("OBL-002", 5), pending("OBL-001", 1), snoozed("OBL-003", 2, 1))
	svc := newTestObligationService(obligations)

	got, err := svc.ListObligations(context.Background(), primary.ObligationFilters{Status: "Pending"})
	if err != nil {
		t.Fatalf("ListObligations failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "OBL-001" {
		t.Errorf("ListObligations = %v, want [OBL-001 OBL-002]", got)
	}

	if _, err := svc.ListObligations(context.Background(), primary.ObligationFilters{Status: "Archived"}); err == nil {
		t.Error("expected error for unknown status")
	}
}
