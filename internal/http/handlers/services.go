package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"
)

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", key+" must be YYYY-MM-DD", nil)
		return nil, false
	}
	return &t, true
}

func (h *Handler) ListServices(c *gin.Context) {
	actor, ok := h.require(c, core.OpReadService)
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	f := db.ServiceFilter{ClientID: c.Query("client_id"), From: from, To: to}
	switch actor.Role {
	case models.RoleCollaborator:
		f.CollaboratorID = actor.ID
	case models.RoleManager:
		f.ManagerID = actor.ID
	}
	out, err := h.Store.ListScheduledServices(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

func (h *Handler) StartService(c *gin.Context) {
	actor, ok := h.require(c, core.OpStartService)
	if !ok {
		return
	}
	svc, err := h.Lifecycle.StartService(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) CompleteService(c *gin.Context) {
	actor, ok := h.require(c, core.OpCompleteService)
	if !ok {
		return
	}
	svc, err := h.Lifecycle.CompleteService(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) CancelService(c *gin.Context) {
	actor, ok := h.require(c, core.OpCancelService)
	if !ok {
		return
	}
	svc, err := h.Lifecycle.CancelService(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// @Summary Submit before/after photos for a service
// @Tags photos
// @Accept json
// @Produce json
// @Success 201 {object} models.PhotoSubmission
// @Failure 400 {object} map[string]any
// @Router /api/services/{id}/photos [post]
func (h *Handler) SubmitPhotos(c *gin.Context) {
	actor, ok := h.require(c, core.OpSubmitPhotos)
	if !ok {
		return
	}
	var in service.SubmitPhotosInput
	if !h.bind(c, &in) {
		return
	}
	sub, err := h.Photos.Submit(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) GetServicePhotos(c *gin.Context) {
	actor, ok := h.require(c, core.OpReadPhotos)
	if !ok {
		return
	}
	sub, err := h.Photos.ForService(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type notesInput struct {
	Notes string `json:"notes"`
}

func (h *Handler) EditSubmissionNotes(c *gin.Context) {
	actor, ok := h.require(c, core.OpEditPhotoNotes)
	if !ok {
		return
	}
	var in notesInput
	if !h.bind(c, &in) {
		return
	}
	sub, err := h.Photos.EditNotes(c.Request.Context(), actor, c.Param("id"), in.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) RemovePhoto(c *gin.Context) {
	actor, ok := h.require(c, core.OpRemovePhoto)
	if !ok {
		return
	}
	sub, err := h.Photos.RemovePhoto(c.Request.Context(), actor, c.Param("id"), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// @Summary Release a photo submission to the client
// @Tags photos
// @Accept json
// @Produce json
// @Success 200 {object} models.PhotoSubmission
// @Router /api/photo-submissions/{id}/send [post]
func (h *Handler) SendSubmission(c *gin.Context) {
	actor, ok := h.require(c, core.OpSendPhotos)
	if !ok {
		return
	}
	var in notesInput
	if !h.bind(c, &in) {
		return
	}
	sub, err := h.Photos.Send(c.Request.Context(), actor, c.Param("id"), in.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
