package service

import (
	"context"
	"sort"
	"time"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

// Agenda is a read-only projection: it merges scheduled services, expanded
// allocation occurrences, and manual events into one ordered calendar.
// Nothing is cached between calls; the underlying sets mutate too often.
type Agenda struct {
	Store *db.Store
}

// ExpandAllocation walks the date range and emits one item per occurrence of
// the allocation's weekdays, clipped to [from, to].
func ExpandAllocation(a models.Allocation, from, to time.Time) []models.AgendaItem {
	wanted := map[time.Weekday]bool{}
	for _, wd := range a.Weekdays {
		wanted[wd] = true
	}

	start := dateOnly(from)
	if s := dateOnly(a.StartDate); s.After(start) {
		start = s
	}
	end := dateOnly(to)
	if e := dateOnly(a.EndDate); e.Before(end) {
		end = e
	}

	var out []models.AgendaItem
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !wanted[d.Weekday()] {
			continue
		}
		out = append(out, models.AgendaItem{
			Kind:     "allocation",
			RefID:    a.ID,
			ClientID: a.ClientID,
			Title:    "recurring allocation",
			Date:     d,
			Start:    a.Start,
			End:      a.End,
		})
	}
	return out
}

// MergeAgenda combines the three calendar sources into one ordered sequence.
func MergeAgenda(services []models.ScheduledService, allocations []models.Allocation,
	events []models.Event, from, to time.Time) []models.AgendaItem {
	var items []models.AgendaItem

	for _, svc := range services {
		if svc.Status == models.ServiceCancelled {
			continue
		}
		items = append(items, models.AgendaItem{
			Kind:     "service",
			RefID:    svc.ID,
			ClientID: svc.ClientID,
			Title:    svc.Notes,
			Date:     dateOnly(svc.Date),
			Start:    svc.Start,
			End:      svc.End,
			Status:   string(svc.Status),
		})
	}
	for _, a := range allocations {
		if a.Status != models.AllocationActive {
			continue
		}
		items = append(items, ExpandAllocation(a, from, to)...)
	}
	for _, e := range events {
		items = append(items, models.AgendaItem{
			Kind:  string(e.Kind),
			RefID: e.ID,
			Title: e.Title,
			Date:  dateOnly(e.Date),
			Start: e.Start,
			End:   e.End,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		if items[i].Start != items[j].Start {
			return items[i].Start < items[j].Start
		}
		return items[i].Kind < items[j].Kind
	})
	return items
}

// ForActor recomputes the calendar of a manager or collaborator for a range.
func (ag *Agenda) ForActor(ctx context.Context, actor core.Actor, from, to time.Time) ([]models.AgendaItem, error) {
	if to.Before(from) {
		return nil, core.Invalid("to", "range end before start")
	}

	filter := db.ServiceFilter{From: &from, To: &to}
	switch actor.Role {
	case models.RoleCollaborator:
		filter.CollaboratorID = actor.ID
	case models.RoleManager, models.RoleAdmin:
		filter.ManagerID = actor.ID
	default:
		return nil, &core.AuthorizationError{Role: actor.Role, Operation: core.OpReadAgenda}
	}

	services, err := ag.Store.ListScheduledServices(ctx, filter)
	if err != nil {
		return nil, err
	}

	var allocations []models.Allocation
	if actor.Role == models.RoleCollaborator {
		allocations, err = ag.Store.ListAllocations(ctx, actor.ID, "", true)
		if err != nil {
			return nil, err
		}
	}

	events, err := ag.Store.ListEvents(ctx, actor.ID, from, to)
	if err != nil {
		return nil, err
	}

	return MergeAgenda(services, allocations, events, from, to), nil
}
