package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/http/middleware"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"
)

type Handler struct {
	Store     *db.Store
	Lifecycle *service.Lifecycle
	Engine    *service.Engine
	Photos    *service.Photos
	Agenda    *service.Agenda
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// fail maps the error taxonomy onto HTTP statuses; error kind and message are
// presented verbatim, nothing is swallowed into a generic success.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		validation *core.ValidationError
		transition *core.InvalidTransitionError
		conflict   *core.AllocationConflictError
		authz      *core.AuthorizationError
		notFound   *core.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error(), nil)
	case errors.As(err, &transition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", transition.Error(), gin.H{
			"entity": transition.Entity,
			"id":     transition.ID,
			"from":   transition.From,
		})
	case errors.As(err, &conflict):
		writeError(c, http.StatusConflict, "ALLOCATION_CONFLICT", conflict.Error(), gin.H{
			"collaborator_id": conflict.CollaboratorID,
			"source_kind":     conflict.SourceKind,
			"source_id":       conflict.SourceID,
			"date":            conflict.Date,
			"start":           conflict.Start,
			"end":             conflict.End,
		})
	case errors.As(err, &authz):
		writeError(c, http.StatusForbidden, "FORBIDDEN", authz.Error(), nil)
	case errors.As(err, &notFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Internal error", nil)
	}
}

// require runs the capability table check for the operation and returns the
// actor when allowed.
func (h *Handler) require(c *gin.Context, op core.Operation) (core.Actor, bool) {
	actor := middleware.ActorFrom(c)
	if err := core.Require(actor.Role, op); err != nil {
		h.fail(c, err)
		return core.Actor{}, false
	}
	return actor, true
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body", err.Error())
		return false
	}
	if err := h.Validator.Struct(dst); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return false
	}
	return true
}
