package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"
)

// @Summary Create a service request
// @Tags requests
// @Accept json
// @Produce json
// @Success 201 {object} models.ServiceRequest
// @Failure 400 {object} map[string]any
// @Router /api/requests [post]
func (h *Handler) CreateRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpCreateRequest)
	if !ok {
		return
	}
	var in service.CreateRequestInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.CreateRequest(c.Request.Context(), actor, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListRequests(c *gin.Context) {
	actor, ok := h.require(c, core.OpReadRequest)
	if !ok {
		return
	}
	f := db.RequestFilter{
		Status:     c.Query("status"),
		Unassigned: c.Query("unassigned") == "true",
	}
	switch actor.Role {
	case models.RoleClient:
		f.ClientID = actor.ID
		f.Unassigned = false
	case models.RoleManager:
		if !f.Unassigned {
			f.ManagerID = actor.ID
		}
	}
	out, err := h.Store.ListRequests(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (h *Handler) GetRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpReadRequest)
	if !ok {
		return
	}
	req, err := db.GetRequest(c.Request.Context(), h.Store.Pool, c.Param("id"))
	if err != nil {
		if db.IsNoRows(err) {
			h.fail(c, &core.NotFoundError{Entity: "request", ID: c.Param("id")})
			return
		}
		h.fail(c, err)
		return
	}
	if actor.Role == models.RoleClient && req.ClientID != actor.ID {
		h.fail(c, &core.NotFoundError{Entity: "request", ID: req.ID})
		return
	}
	c.JSON(http.StatusOK, req)
}

type delegateInput struct {
	ManagerID string `json:"manager_id" validate:"required"`
}

func (h *Handler) DelegateRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpDelegateRequest)
	if !ok {
		return
	}
	var in delegateInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.Delegate(c.Request.Context(), actor, c.Param("id"), in.ManagerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Approve a request and bind a resource
// @Tags requests
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]any
// @Router /api/requests/{id}/approve [post]
func (h *Handler) ApproveRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpApproveRequest)
	if !ok {
		return
	}
	var in service.ApproveInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.Approve(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

type reasonInput struct {
	Reason  string `json:"reason"`
	Elevate bool   `json:"elevate,omitempty"`
}

func (h *Handler) RefuseRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpRefuseRequest)
	if !ok {
		return
	}
	var in reasonInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.Refuse(c.Request.Context(), actor, c.Param("id"), in.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) EscalateRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpEscalateRequest)
	if !ok {
		return
	}
	var in reasonInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.Escalate(c.Request.Context(), actor, c.Param("id"), in.Reason, in.Elevate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) ConfirmDate(c *gin.Context) {
	actor, ok := h.require(c, core.OpConfirmDate)
	if !ok {
		return
	}
	req, err := h.Lifecycle.ConfirmDate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) DeclineDate(c *gin.Context) {
	actor, ok := h.require(c, core.OpDeclineDate)
	if !ok {
		return
	}
	req, err := h.Lifecycle.DeclineDate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	actor, ok := h.require(c, core.OpRejectRequest)
	if !ok {
		return
	}
	var in reasonInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Lifecycle.Reject(c.Request.Context(), actor, c.Param("id"), in.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
