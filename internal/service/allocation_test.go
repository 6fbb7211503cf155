package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func TestMinuteOfDay(t *testing.T) {
	m, err := MinuteOfDay("08:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != 510 {
		t.Fatalf("expected 510, got %d", m)
	}
	if _, err := MinuteOfDay("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
	if _, err := MinuteOfDay("banana"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	// Zero-padding is mandatory: stored windows sort lexically.
	if _, err := MinuteOfDay("9:00"); err == nil {
		t.Fatalf("expected error for non-padded 9:00")
	}
}

func TestCreateRecurringAllocationRejectsOutOfRangeWeekday(t *testing.T) {
	e := &Engine{}
	in := CreateAllocationInput{
		CollaboratorID: "c1",
		ClientID:       "cl1",
		StartDate:      mustDate(t, "2025-03-03"),
		EndDate:        mustDate(t, "2025-03-31"),
		Weekdays:       []time.Weekday{time.Weekday(9)},
		Start:          "08:00",
		End:            "12:00",
	}
	_, err := e.CreateRecurringAllocation(context.Background(), core.Actor{ID: "m1", Role: models.RoleManager}, in)
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for weekday 9, got %v", err)
	}
}

func TestParseWindowRejectsInverted(t *testing.T) {
	if _, _, err := ParseWindow("14:00", "12:00"); err == nil {
		t.Fatalf("expected error for inverted window")
	}
	var ve *core.ValidationError
	_, _, err := ParseWindow("12:00", "12:00")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestWindowsOverlapTouchingBoundariesAreFree(t *testing.T) {
	// 08:00-12:00 vs 12:00-14:00 touch but do not conflict.
	if windowsOverlap(480, 720, 720, 840) {
		t.Fatalf("touching windows must not overlap")
	}
	if !windowsOverlap(480, 720, 600, 840) {
		t.Fatalf("expected overlap for 08:00-12:00 vs 10:00-14:00")
	}
}

func TestValidateBindingExclusivity(t *testing.T) {
	team := &models.Team{ID: "t1", MemberIDs: []string{"c1", "c2"}}

	b := models.ResourceBinding{Kind: models.BindingTeam, TeamID: "t1", CollaboratorID: "c1"}
	if err := ValidateBinding(b, team); err == nil {
		t.Fatalf("expected error when both team and collaborator set")
	}

	b = models.ResourceBinding{Kind: models.BindingCollaborator, CollaboratorID: "c1", TeamID: "t1"}
	if err := ValidateBinding(b, nil); err == nil {
		t.Fatalf("expected error when collaborator binding carries a team")
	}

	b = models.ResourceBinding{Kind: models.BindingCollaborator, CollaboratorID: "c1"}
	if err := ValidateBinding(b, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBindingMemberSubset(t *testing.T) {
	team := &models.Team{ID: "t1", MemberIDs: []string{"c1", "c2"}}

	b := models.ResourceBinding{Kind: models.BindingTeam, TeamID: "t1", MemberIDs: []string{"c1", "c9"}}
	if err := ValidateBinding(b, team); err == nil {
		t.Fatalf("expected error for member outside team")
	}

	b = models.ResourceBinding{Kind: models.BindingTeam, TeamID: "t1", MemberIDs: []string{"c2"}}
	if err := ValidateBinding(b, team); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBoundCollaboratorsEmptySubsetMeansWholeTeam(t *testing.T) {
	team := &models.Team{ID: "t1", MemberIDs: []string{"c1", "c2"}}
	b := models.ResourceBinding{Kind: models.BindingTeam, TeamID: "t1"}
	got := BoundCollaborators(b, team)
	if len(got) != 2 {
		t.Fatalf("expected whole team, got %v", got)
	}
}

func TestFindConflictAgainstScheduledService(t *testing.T) {
	day := mustDate(t, "2025-03-10")
	commitments := []models.Commitment{
		{Kind: models.CommitmentService, ID: "s1", CollaboratorIDs: []string{"c1"}, Date: &day, Start: "08:00", End: "12:00"},
	}

	conflict, err := FindConflict(commitments, []string{"c1"}, day, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.SourceID != "s1" {
		t.Fatalf("expected conflict with s1, got %+v", conflict)
	}

	conflict, err = FindConflict(commitments, []string{"c1"}, day, "12:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("touching boundary must not conflict, got %+v", conflict)
	}

	otherDay := mustDate(t, "2025-03-11")
	conflict, err = FindConflict(commitments, []string{"c1"}, otherDay, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("different day must not conflict, got %+v", conflict)
	}
}

func TestFindConflictAgainstRecurringAllocation(t *testing.T) {
	start := mustDate(t, "2025-03-03")
	end := mustDate(t, "2025-03-31")
	commitments := []models.Commitment{
		{
			Kind: models.CommitmentAllocation, ID: "a1", CollaboratorIDs: []string{"c1"},
			StartDate: &start, EndDate: &end,
			Weekdays: []time.Weekday{time.Monday},
			Start:    "08:00", End: "12:00",
		},
	}

	// 2025-03-10 is a Monday inside the range.
	monday := mustDate(t, "2025-03-10")
	conflict, err := FindConflict(commitments, []string{"c1"}, monday, "11:00", "13:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.SourceID != "a1" {
		t.Fatalf("expected allocation conflict, got %+v", conflict)
	}

	tuesday := mustDate(t, "2025-03-11")
	conflict, err = FindConflict(commitments, []string{"c1"}, tuesday, "11:00", "13:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("weekday miss must not conflict, got %+v", conflict)
	}
}

func TestFindConflictIgnoresOtherCollaborators(t *testing.T) {
	day := mustDate(t, "2025-03-10")
	commitments := []models.Commitment{
		{Kind: models.CommitmentService, ID: "s1", CollaboratorIDs: []string{"c2"}, Date: &day, Start: "08:00", End: "12:00"},
	}
	conflict, err := FindConflict(commitments, []string{"c1"}, day, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("other collaborator's commitment must not conflict, got %+v", conflict)
	}
}

func TestFindRecurringConflictOverlappingAllocation(t *testing.T) {
	start := mustDate(t, "2025-03-03")
	end := mustDate(t, "2025-03-31")
	commitments := []models.Commitment{
		{
			Kind: models.CommitmentAllocation, ID: "a1", CollaboratorIDs: []string{"c1"},
			StartDate: &start, EndDate: &end,
			Weekdays: []time.Weekday{time.Monday},
			Start:    "08:00", End: "12:00",
		},
	}

	// Mondays 10:00-14:00 over the same weeks is rejected.
	conflict, err := FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Monday}, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.SourceID != "a1" {
		t.Fatalf("expected recurring conflict, got %+v", conflict)
	}

	// Tuesdays 10:00-14:00 succeeds.
	conflict, err = FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Tuesday}, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("different weekday must not conflict, got %+v", conflict)
	}

	// Same weekday, non-overlapping window succeeds.
	conflict, err = FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Monday}, "12:00", "16:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("touching windows must not conflict, got %+v", conflict)
	}
}

func TestFindRecurringConflictAgainstScheduledService(t *testing.T) {
	day := mustDate(t, "2025-03-10") // Monday
	commitments := []models.Commitment{
		{Kind: models.CommitmentService, ID: "s1", CollaboratorIDs: []string{"c1"}, Date: &day, Start: "09:00", End: "11:00"},
	}
	start := mustDate(t, "2025-03-03")
	end := mustDate(t, "2025-03-31")

	conflict, err := FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Monday}, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.SourceKind != "service" {
		t.Fatalf("expected service conflict, got %+v", conflict)
	}

	conflict, err = FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Friday}, "10:00", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("friday recurrence must not hit a monday service, got %+v", conflict)
	}
}

func TestFindRecurringConflictOutsideDateRange(t *testing.T) {
	aStart := mustDate(t, "2025-01-06")
	aEnd := mustDate(t, "2025-01-31")
	commitments := []models.Commitment{
		{
			Kind: models.CommitmentAllocation, ID: "a1", CollaboratorIDs: []string{"c1"},
			StartDate: &aStart, EndDate: &aEnd,
			Weekdays: []time.Weekday{time.Monday},
			Start:    "08:00", End: "12:00",
		},
	}
	start := mustDate(t, "2025-03-03")
	end := mustDate(t, "2025-03-31")

	conflict, err := FindRecurringConflict(commitments, "c1", start, end, []time.Weekday{time.Monday}, "08:00", "12:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("disjoint ranges must not conflict, got %+v", conflict)
	}
}
