package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/notify"
)

func newTestLifecycle(t *testing.T) (*Lifecycle, *db.Store) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := db.New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(store.Close)
	l := &Lifecycle{
		Store:    store,
		Engine:   &Engine{Store: store, Logger: zerolog.Nop()},
		Notifier: &notify.MockNotifier{Logger: zerolog.Nop()},
		Logger:   zerolog.Nop(),
	}
	return l, store
}

func seedRequestFixture(t *testing.T, store *db.Store) (clientID, collaboratorID, catalogID string) {
	t.Helper()
	ctx := context.Background()

	cs := models.CatalogService{Name: "deep clean", DurationMinutes: 120, Active: true}
	if err := store.InsertCatalogService(ctx, &cs); err != nil {
		t.Fatalf("insert catalog service: %v", err)
	}
	cl := models.Client{Name: "Acme Facilities", Email: "ops@acme.test"}
	if err := store.InsertClient(ctx, &cl); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	col := models.Collaborator{Name: "Jo Field", Position: "cleaner"}
	if err := store.InsertCollaborator(ctx, &col); err != nil {
		t.Fatalf("insert collaborator: %v", err)
	}
	return cl.ID, col.ID, cs.ID
}

// approveInProgress drives a fresh request through a matching-date approval so
// it lands in-progress with one derived service.
func approveInProgress(t *testing.T, l *Lifecycle, clientID, collaboratorID, catalogID string) (models.ServiceRequest, models.ScheduledService) {
	t.Helper()
	ctx := context.Background()
	client := core.Actor{ID: clientID, Role: models.RoleClient}
	manager := core.Actor{ID: "mgr-" + db.NewID(), Role: models.RoleManager}
	date := time.Date(2032, 3, 10, 0, 0, 0, 0, time.UTC)

	req, err := l.CreateRequest(ctx, client, CreateRequestInput{
		CatalogServiceID: catalogID,
		Description:      "weekly clean",
		DesiredDate:      date,
		DesiredStart:     "08:00",
		DesiredEnd:       "10:00",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	req, err = l.Approve(ctx, manager, req.ID, ApproveInput{
		Binding:      models.ResourceBinding{Kind: models.BindingCollaborator, CollaboratorID: collaboratorID},
		ScheduleDate: date,
		Description:  "morning slot",
	})
	if err != nil {
		t.Fatalf("approve request: %v", err)
	}
	if req.Status != models.RequestInProgress {
		t.Fatalf("expected in-progress after matching-date approval, got %s", req.Status)
	}

	services, err := l.Store.ListScheduledServices(ctx, db.ServiceFilter{ClientID: clientID})
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	for _, svc := range services {
		if svc.RequestID != nil && *svc.RequestID == req.ID {
			return req, svc
		}
	}
	t.Fatalf("no service derived from request %s", req.ID)
	return models.ServiceRequest{}, models.ScheduledService{}
}

func TestRejectCancelsDerivedService(t *testing.T) {
	l, store := newTestLifecycle(t)
	clientID, collaboratorID, catalogID := seedRequestFixture(t, store)
	req, svc := approveInProgress(t, l, clientID, collaboratorID, catalogID)
	ctx := context.Background()

	admin := core.Actor{ID: "adm-" + db.NewID(), Role: models.RoleAdmin}
	rejected, err := l.Reject(ctx, admin, req.ID, "contract ended")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RequestRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}

	got, err := db.GetScheduledService(ctx, store.Pool, svc.ID)
	if err != nil {
		t.Fatalf("get service: %v", err)
	}
	if got.Status != models.ServiceCancelled {
		t.Fatalf("derived service must be cancelled on reject, got %s", got.Status)
	}

	commitments, err := db.Commitments(ctx, store.Pool, []string{collaboratorID})
	if err != nil {
		t.Fatalf("commitments: %v", err)
	}
	for _, c := range commitments {
		if c.ID == svc.ID {
			t.Fatalf("cancelled service must not count as a commitment")
		}
	}
}

func TestCancelServiceReturnsRequestToPool(t *testing.T) {
	l, store := newTestLifecycle(t)
	clientID, collaboratorID, catalogID := seedRequestFixture(t, store)
	req, svc := approveInProgress(t, l, clientID, collaboratorID, catalogID)
	ctx := context.Background()

	manager := core.Actor{ID: "mgr-" + db.NewID(), Role: models.RoleManager}
	cancelled, err := l.CancelService(ctx, manager, svc.ID)
	if err != nil {
		t.Fatalf("cancel service: %v", err)
	}
	if cancelled.Status != models.ServiceCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	got, err := db.GetRequest(ctx, store.Pool, req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Status != models.RequestPending {
		t.Fatalf("request must return to pending on cancellation, got %s", got.Status)
	}
	if got.Binding != nil {
		t.Fatalf("binding must be cleared on cancellation, got %+v", got.Binding)
	}
}

func TestPhotoRemovalThenSendAndIdempotentResend(t *testing.T) {
	l, store := newTestLifecycle(t)
	clientID, collaboratorID, catalogID := seedRequestFixture(t, store)
	_, svc := approveInProgress(t, l, clientID, collaboratorID, catalogID)
	ctx := context.Background()

	p := &Photos{Store: store, Notifier: &notify.MockNotifier{Logger: zerolog.Nop()}, Logger: zerolog.Nop()}
	collaborator := core.Actor{ID: collaboratorID, Role: models.RoleCollaborator}
	manager := core.Actor{ID: "mgr-" + db.NewID(), Role: models.RoleManager}

	sub, err := p.Submit(ctx, collaborator, svc.ID, SubmitPhotosInput{
		Before: []string{"b1", "b2", "b3"},
		After:  []string{"a1", "a2"},
		Notes:  "all rooms done",
	})
	if err != nil {
		t.Fatalf("submit photos: %v", err)
	}
	if sub.Status != models.SubmissionPending || len(sub.Photos) != 5 {
		t.Fatalf("expected pending submission with 5 photos, got %s with %d", sub.Status, len(sub.Photos))
	}

	sub, err = p.RemovePhoto(ctx, manager, sub.ID, "b1")
	if err != nil {
		t.Fatalf("remove photo: %v", err)
	}

	sub, err = p.Send(ctx, manager, sub.ID, "first pass")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sub.Status != models.SubmissionSent {
		t.Fatalf("expected sent, got %s", sub.Status)
	}
	if len(sub.Photos) != 4 {
		t.Fatalf("sent submission must exclude the removed photo, got %d photos", len(sub.Photos))
	}
	for _, photo := range sub.Photos {
		if photo.Ref == "b1" {
			t.Fatalf("removed photo b1 still present after send")
		}
	}

	// Re-sending updates notes and stays sent instead of failing.
	sub, err = p.Send(ctx, manager, sub.ID, "corrected notes")
	if err != nil {
		t.Fatalf("re-send: %v", err)
	}
	if sub.Status != models.SubmissionSent || sub.ManagerNotes != "corrected notes" {
		t.Fatalf("re-send must refresh notes and keep status sent, got %s / %q", sub.Status, sub.ManagerNotes)
	}
	if len(sub.Photos) != 4 {
		t.Fatalf("re-send must not duplicate photos, got %d", len(sub.Photos))
	}
}
