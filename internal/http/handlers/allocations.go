package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"
)

// @Summary Create a recurring allocation
// @Tags allocations
// @Accept json
// @Produce json
// @Success 201 {object} models.Allocation
// @Failure 409 {object} map[string]any
// @Router /api/allocations [post]
func (h *Handler) CreateAllocation(c *gin.Context) {
	actor, ok := h.require(c, core.OpCreateAllocation)
	if !ok {
		return
	}
	var in service.CreateAllocationInput
	if !h.bind(c, &in) {
		return
	}
	alloc, err := h.Engine.CreateRecurringAllocation(c.Request.Context(), actor, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, alloc)
}

func (h *Handler) ListAllocations(c *gin.Context) {
	if _, ok := h.require(c, core.OpReadAllocation); !ok {
		return
	}
	out, err := h.Store.ListAllocations(c.Request.Context(),
		c.Query("collaborator_id"), c.Query("client_id"), c.Query("active") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocations": out})
}

func (h *Handler) ReleaseAllocation(c *gin.Context) {
	if _, ok := h.require(c, core.OpReleaseAllocation); !ok {
		return
	}
	if err := h.Engine.ReleaseAllocation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "released"})
}
