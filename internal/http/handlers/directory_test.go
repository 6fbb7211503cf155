package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func postEvent(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("actor", core.Actor{ID: "m1", Role: models.RoleManager})
	})
	r.POST("/events", h.CreateEvent)

	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateEventRejectsNonPaddedWindow(t *testing.T) {
	// "9:00" would sort after "13:00" in the lexical agenda ordering.
	w := postEvent(t, `{"kind":"meeting","title":"sync","date":"2025-03-10T00:00:00Z","start":"9:00","end":"12:00"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-padded window, got %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w.Body.Bytes()); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestCreateEventRejectsInvertedWindow(t *testing.T) {
	w := postEvent(t, `{"kind":"personal","title":"dentist","date":"2025-03-10T00:00:00Z","start":"14:00","end":"12:00"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d", w.Code)
	}
}
