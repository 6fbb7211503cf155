package core

import (
	"errors"
	"testing"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role models.Role
		op   Operation
		want bool
	}{
		{models.RoleClient, OpCreateRequest, true},
		{models.RoleClient, OpConfirmDate, true},
		{models.RoleClient, OpApproveRequest, false},
		{models.RoleClient, OpSendPhotos, false},
		{models.RoleCollaborator, OpSubmitPhotos, true},
		{models.RoleCollaborator, OpSendPhotos, false},
		{models.RoleCollaborator, OpRemovePhoto, false},
		{models.RoleManager, OpApproveRequest, true},
		{models.RoleManager, OpSendPhotos, true},
		{models.RoleManager, OpDelegateRequest, false},
		{models.RoleAdmin, OpDelegateRequest, true},
		{models.RoleAdmin, OpRejectRequest, true},
		{models.RoleAdmin, OpSendPhotos, true},
		{models.RoleAdmin, OpRemovePhoto, true},
		{models.Role("ghost"), OpCreateRequest, false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.op); got != tc.want {
			t.Fatalf("Can(%s, %s) = %v, want %v", tc.role, tc.op, got, tc.want)
		}
	}
}

func TestRequireReturnsAuthorizationError(t *testing.T) {
	err := Require(models.RoleCollaborator, OpSendPhotos)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if Require(models.RoleManager, OpSendPhotos) != nil {
		t.Fatalf("manager must be allowed to send photos")
	}
}
