package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func TestCanTransitionEdges(t *testing.T) {
	cases := []struct {
		status models.RequestStatus
		action Action
		want   bool
	}{
		{models.RequestPending, ActionDelegate, true},
		{models.RequestUrgent, ActionDelegate, true},
		{models.RequestRefused, ActionDelegate, true},
		{models.RequestDelegated, ActionDelegate, false},
		{models.RequestPending, ActionApprove, true},
		{models.RequestDelegated, ActionApprove, true},
		{models.RequestUrgent, ActionApprove, true},
		{models.RequestApproved, ActionApprove, false},
		{models.RequestInProgress, ActionApprove, false},
		{models.RequestDelegated, ActionRefuse, true},
		{models.RequestDelegated, ActionEscalate, true},
		{models.RequestAwaitingClient, ActionConfirm, true},
		{models.RequestAwaitingClient, ActionDecline, true},
		{models.RequestPending, ActionConfirm, false},
		{models.RequestInProgress, ActionComplete, true},
		{models.RequestCompleted, ActionComplete, false},
		{models.RequestPending, ActionReject, true},
		{models.RequestInProgress, ActionReject, true},
		{models.RequestCompleted, ActionReject, false},
		{models.RequestRejected, ActionReject, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.status, tc.action); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.status, tc.action, got, tc.want)
		}
	}
}

func TestNextOnApproval(t *testing.T) {
	desired := mustDate(t, "2025-03-10")

	if got := NextOnApproval(desired, mustDate(t, "2025-03-10")); got != models.RequestInProgress {
		t.Fatalf("matching dates should skip confirmation, got %s", got)
	}
	if got := NextOnApproval(desired, mustDate(t, "2025-03-12")); got != models.RequestAwaitingClient {
		t.Fatalf("differing dates should require confirmation, got %s", got)
	}
}

func TestRefuseEscalateRejectRequireReason(t *testing.T) {
	l := &Lifecycle{}
	ctx := context.Background()
	manager := core.Actor{ID: "m1", Role: models.RoleManager}
	admin := core.Actor{ID: "a1", Role: models.RoleAdmin}
	var ve *core.ValidationError

	if _, err := l.Refuse(ctx, manager, "r1", "   "); !errors.As(err, &ve) {
		t.Fatalf("refuse without reason should be a ValidationError, got %v", err)
	}
	if _, err := l.Escalate(ctx, manager, "r1", "", false); !errors.As(err, &ve) {
		t.Fatalf("escalate without reason should be a ValidationError, got %v", err)
	}
	if _, err := l.Reject(ctx, admin, "r1", ""); !errors.As(err, &ve) {
		t.Fatalf("reject without reason should be a ValidationError, got %v", err)
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !models.RequestCompleted.Terminal() || !models.RequestRejected.Terminal() {
		t.Fatalf("completed and rejected must be terminal")
	}
	if models.RequestAwaitingClient.Terminal() {
		t.Fatalf("awaiting-client-confirmation is not terminal")
	}
}
