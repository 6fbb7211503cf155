package core

import "github.com/ruanout1/Projeto-Hive-sub004/internal/models"

type Operation string

const (
	OpCreateRequest   Operation = "request.create"
	OpReadRequest     Operation = "request.read"
	OpDelegateRequest Operation = "request.delegate"
	OpApproveRequest  Operation = "request.approve"
	OpRefuseRequest   Operation = "request.refuse"
	OpEscalateRequest Operation = "request.escalate"
	OpConfirmDate     Operation = "request.confirm-date"
	OpDeclineDate     Operation = "request.decline-date"
	OpRejectRequest   Operation = "request.reject"

	OpCreateAllocation  Operation = "allocation.create"
	OpReadAllocation    Operation = "allocation.read"
	OpReleaseAllocation Operation = "allocation.release"

	OpReadService     Operation = "service.read"
	OpStartService    Operation = "service.start"
	OpCompleteService Operation = "service.complete"
	OpCancelService   Operation = "service.cancel"

	OpSubmitPhotos   Operation = "photos.submit"
	OpReadPhotos     Operation = "photos.read"
	OpEditPhotoNotes Operation = "photos.edit-notes"
	OpRemovePhoto    Operation = "photos.remove"
	OpSendPhotos     Operation = "photos.send"

	OpReadAgenda  Operation = "agenda.read"
	OpCreateEvent Operation = "event.create"

	OpManageCatalog   Operation = "catalog.manage"
	OpReadCatalog     Operation = "catalog.read"
	OpManageDirectory Operation = "directory.manage"
	OpReadDirectory   Operation = "directory.read"
)

// capabilities is the single (role, operation) table every core operation is
// checked against at the handler boundary. Admin may call send/remove-photo
// directly; that is a deliberate policy choice made explicit here.
var capabilities = map[models.Role]map[Operation]bool{
	models.RoleClient: {
		OpCreateRequest: true,
		OpReadRequest:   true,
		OpConfirmDate:   true,
		OpDeclineDate:   true,
		OpReadPhotos:    true,
		OpReadCatalog:   true,
	},
	models.RoleCollaborator: {
		OpReadService:     true,
		OpStartService:    true,
		OpCompleteService: true,
		OpSubmitPhotos:    true,
		OpReadPhotos:      true,
		OpReadAgenda:      true,
		OpCreateEvent:     true,
		OpReadCatalog:     true,
		OpReadDirectory:   true,
	},
	models.RoleManager: {
		OpReadRequest:       true,
		OpApproveRequest:    true,
		OpRefuseRequest:     true,
		OpEscalateRequest:   true,
		OpCreateAllocation:  true,
		OpReadAllocation:    true,
		OpReleaseAllocation: true,
		OpReadService:       true,
		OpCancelService:     true,
		OpReadPhotos:        true,
		OpEditPhotoNotes:    true,
		OpRemovePhoto:       true,
		OpSendPhotos:        true,
		OpReadAgenda:        true,
		OpCreateEvent:       true,
		OpReadCatalog:       true,
		OpReadDirectory:     true,
	},
	models.RoleAdmin: {
		OpReadRequest:       true,
		OpDelegateRequest:   true,
		OpRejectRequest:     true,
		OpCreateAllocation:  true,
		OpReadAllocation:    true,
		OpReleaseAllocation: true,
		OpReadService:       true,
		OpCancelService:     true,
		OpReadPhotos:        true,
		OpEditPhotoNotes:    true,
		OpRemovePhoto:       true,
		OpSendPhotos:        true,
		OpReadAgenda:        true,
		OpCreateEvent:       true,
		OpManageCatalog:     true,
		OpReadCatalog:       true,
		OpManageDirectory:   true,
		OpReadDirectory:     true,
	},
}

func Can(role models.Role, op Operation) bool {
	return capabilities[role][op]
}

func Require(role models.Role, op Operation) error {
	if !Can(role, op) {
		return &AuthorizationError{Role: role, Operation: op}
	}
	return nil
}

// Actor identifies the caller of every core operation. Identity verification
// happens upstream; the core only consumes id and role.
type Actor struct {
	ID   string
	Role models.Role
}
