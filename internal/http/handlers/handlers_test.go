package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func failingRoute(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &Handler{Logger: zerolog.Nop()}
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		h.fail(c, err)
	})
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload.Error.Code
}

func TestFailMapsValidationError(t *testing.T) {
	w := failingRoute(t, core.Invalid("reason", "refusal reason is required"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestFailMapsInvalidTransition(t *testing.T) {
	w := failingRoute(t, &core.InvalidTransitionError{Entity: "request", ID: "r1", From: "completed", Action: "approve"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "INVALID_TRANSITION" {
		t.Fatalf("expected INVALID_TRANSITION, got %s", code)
	}
}

func TestFailMapsAllocationConflictWithDetails(t *testing.T) {
	w := failingRoute(t, &core.AllocationConflictError{
		CollaboratorID: "c1", SourceKind: "allocation", SourceID: "a1",
		Date: "2025-03-10", Start: "08:00", End: "12:00",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				SourceID string `json:"source_id"`
				Start    string `json:"start"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Error.Code != "ALLOCATION_CONFLICT" {
		t.Fatalf("expected ALLOCATION_CONFLICT, got %s", payload.Error.Code)
	}
	if payload.Error.Details.SourceID != "a1" || payload.Error.Details.Start != "08:00" {
		t.Fatalf("conflict details must identify the blocking commitment, got %+v", payload.Error.Details)
	}
}

func TestFailMapsAuthorizationAndNotFound(t *testing.T) {
	w := failingRoute(t, &core.AuthorizationError{Role: models.RoleCollaborator, Operation: core.OpSendPhotos})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	w = failingRoute(t, &core.NotFoundError{Entity: "request", ID: "r1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
