package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestMockNotifierRecordsEvents(t *testing.T) {
	m := &MockNotifier{Logger: zerolog.Nop()}
	if err := m.Notify(context.Background(), Event{Kind: KindDelegated, RequestID: "r1", Recipient: "m1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := m.Events()
	if len(events) != 1 || events[0].Kind != KindDelegated {
		t.Fatalf("expected one delegated event, got %+v", events)
	}
}

func TestHTTPNotifierPostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := HTTPNotifier{BaseURL: srv.URL}
	if err := n.Notify(context.Background(), Event{Kind: KindPhotosReleased, ServiceID: "s1", Recipient: "cl1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != KindPhotosReleased || got.ServiceID != "s1" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestHTTPNotifierSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := HTTPNotifier{BaseURL: srv.URL}
	if err := n.Notify(context.Background(), Event{Kind: KindEscalated}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}
