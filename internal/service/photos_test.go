package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func TestSubmitPhotosRequiresAtLeastOnePhoto(t *testing.T) {
	p := &Photos{}
	actor := core.Actor{ID: "c1", Role: models.RoleCollaborator}

	_, err := p.Submit(context.Background(), actor, "svc1", SubmitPhotosInput{Notes: "only notes"})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty photo sets, got %v", err)
	}
}
