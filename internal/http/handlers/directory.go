package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"
)

type catalogInput struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0"`
}

func (h *Handler) CreateCatalogService(c *gin.Context) {
	if _, ok := h.require(c, core.OpManageCatalog); !ok {
		return
	}
	var in catalogInput
	if !h.bind(c, &in) {
		return
	}
	cs := models.CatalogService{
		Name:            in.Name,
		Description:     in.Description,
		PriceCents:      in.PriceCents,
		DurationMinutes: in.DurationMinutes,
		Active:          true,
	}
	if err := h.Store.InsertCatalogService(c.Request.Context(), &cs); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cs)
}

func (h *Handler) ListCatalog(c *gin.Context) {
	if _, ok := h.require(c, core.OpReadCatalog); !ok {
		return
	}
	out, err := h.Store.ListCatalogServices(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog": out})
}

type clientInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Branches []struct {
		Label   string `json:"label" validate:"required"`
		Address string `json:"address"`
		City    string `json:"city"`
	} `json:"branches"`
}

func (h *Handler) CreateClient(c *gin.Context) {
	if _, ok := h.require(c, core.OpManageDirectory); !ok {
		return
	}
	var in clientInput
	if !h.bind(c, &in) {
		return
	}
	cl := models.Client{Name: in.Name, Email: in.Email}
	for _, b := range in.Branches {
		cl.Branches = append(cl.Branches, models.Branch{Label: b.Label, Address: b.Address, City: b.City})
	}
	if err := h.Store.InsertClient(c.Request.Context(), &cl); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *Handler) ListClients(c *gin.Context) {
	if _, ok := h.require(c, core.OpReadDirectory); !ok {
		return
	}
	out, err := h.Store.ListClients(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

type collaboratorInput struct {
	Name     string  `json:"name" validate:"required"`
	Position string  `json:"position"`
	TeamID   *string `json:"team_id"`
}

func (h *Handler) CreateCollaborator(c *gin.Context) {
	if _, ok := h.require(c, core.OpManageDirectory); !ok {
		return
	}
	var in collaboratorInput
	if !h.bind(c, &in) {
		return
	}
	col := models.Collaborator{Name: in.Name, Position: in.Position, TeamID: in.TeamID}
	if err := h.Store.InsertCollaborator(c.Request.Context(), &col); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

// ListCollaborators includes each collaborator's availability for the given
// date (default today), always derived from live commitment rows.
func (h *Handler) ListCollaborators(c *gin.Context) {
	if _, ok := h.require(c, core.OpReadDirectory); !ok {
		return
	}
	date := time.Now().UTC()
	if d, ok := parseDateQuery(c, "date"); !ok {
		return
	} else if d != nil {
		date = *d
	}
	out, err := h.Store.ListCollaborators(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collaborators": out})
}

type teamInput struct {
	Name      string   `json:"name" validate:"required"`
	ManagerID string   `json:"manager_id" validate:"required"`
	MemberIDs []string `json:"member_ids"`
}

func (h *Handler) CreateTeam(c *gin.Context) {
	if _, ok := h.require(c, core.OpManageDirectory); !ok {
		return
	}
	var in teamInput
	if !h.bind(c, &in) {
		return
	}
	team := models.Team{Name: in.Name, ManagerID: in.ManagerID, MemberIDs: in.MemberIDs}
	if err := h.Store.InsertTeam(c.Request.Context(), &team); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (h *Handler) ListTeams(c *gin.Context) {
	if _, ok := h.require(c, core.OpReadDirectory); !ok {
		return
	}
	out, err := h.Store.ListTeams(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": out})
}

type teamMembersInput struct {
	MemberIDs []string `json:"member_ids" validate:"required"`
}

func (h *Handler) SetTeamMembers(c *gin.Context) {
	if _, ok := h.require(c, core.OpManageDirectory); !ok {
		return
	}
	var in teamMembersInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.Store.SetTeamMembers(c.Request.Context(), c.Param("id"), in.MemberIDs); err != nil {
		h.fail(c, err)
		return
	}
	team, err := h.Store.GetTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

type eventInput struct {
	Kind  models.EventKind `json:"kind" validate:"required,oneof=meeting personal"`
	Title string           `json:"title" validate:"required"`
	Date  time.Time        `json:"date" validate:"required"`
	Start string           `json:"start" validate:"required"`
	End   string           `json:"end" validate:"required"`
}

func (h *Handler) CreateEvent(c *gin.Context) {
	actor, ok := h.require(c, core.OpCreateEvent)
	if !ok {
		return
	}
	var in eventInput
	if !h.bind(c, &in) {
		return
	}
	if _, _, err := service.ParseWindow(in.Start, in.End); err != nil {
		h.fail(c, err)
		return
	}
	e := models.Event{OwnerID: actor.ID, Kind: in.Kind, Title: in.Title, Date: in.Date, Start: in.Start, End: in.End}
	if err := h.Store.InsertEvent(c.Request.Context(), &e); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// @Summary Merged calendar for the calling actor
// @Tags agenda
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/agenda [get]
func (h *Handler) GetAgenda(c *gin.Context) {
	actor, ok := h.require(c, core.OpReadAgenda)
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
	now := time.Now().UTC()
	if from == nil {
		f := now
		from = &f
	}
	if to == nil {
		t := now.AddDate(0, 1, 0)
		to = &t
	}
	items, err := h.Agenda.ForActor(c.Request.Context(), actor, *from, *to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
