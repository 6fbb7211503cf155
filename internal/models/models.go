package models

import "time"

type Role string

const (
	RoleClient       Role = "client"
	RoleCollaborator Role = "collaborator"
	RoleManager      Role = "manager"
	RoleAdmin        Role = "admin"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type RequestStatus string

const (
	RequestPending        RequestStatus = "pending"
	RequestUrgent         RequestStatus = "urgent"
	RequestDelegated      RequestStatus = "delegated"
	RequestRefused        RequestStatus = "refused-by-manager"
	RequestApproved       RequestStatus = "approved"
	RequestAwaitingClient RequestStatus = "awaiting-client-confirmation"
	RequestInProgress     RequestStatus = "in-progress"
	RequestCompleted      RequestStatus = "completed"
	RequestRejected       RequestStatus = "rejected"
)

// Terminal reports whether no further lifecycle edges leave the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestRejected
}

type ServiceStatus string

const (
	ServiceScheduled  ServiceStatus = "scheduled"
	ServiceInProgress ServiceStatus = "in-progress"
	ServiceCompleted  ServiceStatus = "completed"
	ServiceCancelled  ServiceStatus = "cancelled"
)

type AllocationStatus string

const (
	AllocationActive   AllocationStatus = "active"
	AllocationReleased AllocationStatus = "released"
)

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionSent    SubmissionStatus = "sent"
)

type PhotoSet string

const (
	PhotoSetBefore PhotoSet = "before"
	PhotoSetAfter  PhotoSet = "after"
)

type BindingKind string

const (
	BindingTeam         BindingKind = "team"
	BindingCollaborator BindingKind = "collaborator"
)

// ResourceBinding is a tagged variant: either a team (optionally narrowed to a
// member subset) or a single collaborator, never both.
type ResourceBinding struct {
	Kind           BindingKind `json:"kind"`
	TeamID         string      `json:"team_id,omitempty"`
	MemberIDs      []string    `json:"member_ids,omitempty"`
	CollaboratorID string      `json:"collaborator_id,omitempty"`
}

type CatalogService struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Branches  []Branch  `json:"branches,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Branch struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Label    string `json:"label"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type Collaborator struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	TeamID    *string   `json:"team_id"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"manager_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type Manager struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Areas []string `json:"areas"`
}

type ServiceRequest struct {
	ID               string        `json:"id"`
	ClientID         string        `json:"client_id"`
	BranchID         *string       `json:"branch_id"`
	CatalogServiceID string        `json:"catalog_service_id"`
	Description      string        `json:"description"`
	DesiredDate      time.Time     `json:"desired_date"`
	DesiredStart     string        `json:"desired_start"`
	DesiredEnd       string        `json:"desired_end"`
	Priority         Priority      `json:"priority"`
	Status           RequestStatus `json:"status"`
	ManagerID        *string       `json:"manager_id"`
	// Binding is nil until a manager approves the request.
	Binding      *ResourceBinding `json:"binding,omitempty"`
	Observations string           `json:"observations"`
	ProposedDate *time.Time       `json:"proposed_date"`
	ProposedNote string           `json:"proposed_note"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type ScheduledService struct {
	ID               string          `json:"id"`
	RequestID        *string         `json:"request_id"`
	ClientID         string          `json:"client_id"`
	CatalogServiceID string          `json:"catalog_service_id"`
	ManagerID        *string         `json:"manager_id"`
	Date             time.Time       `json:"date"`
	Start            string          `json:"start"`
	End              string          `json:"end"`
	Binding          ResourceBinding `json:"binding"`
	Status           ServiceStatus   `json:"status"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type Allocation struct {
	ID             string           `json:"id"`
	CollaboratorID string           `json:"collaborator_id"`
	ClientID       string           `json:"client_id"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Weekdays       []time.Weekday   `json:"weekdays"`
	Start          string           `json:"start"`
	End            string           `json:"end"`
	Status         AllocationStatus `json:"status"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

type Photo struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Set          PhotoSet  `json:"set"`
	Ref          string    `json:"ref"`
	AddedBy      string    `json:"added_by"`
	AddedAt      time.Time `json:"added_at"`
}

type PhotoSubmission struct {
	ID                 string           `json:"id"`
	ScheduledServiceID string           `json:"scheduled_service_id"`
	CollaboratorNotes  string           `json:"collaborator_notes"`
	ManagerNotes       string           `json:"manager_notes"`
	Status             SubmissionStatus `json:"status"`
	SentBy             *string          `json:"sent_by"`
	SentAt             *time.Time       `json:"sent_at"`
	Photos             []Photo          `json:"photos"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PhotoRemoval records a photo taken out of a submission. PostRelease marks
// removals from an already sent submission, which are corrective actions.
type PhotoRemoval struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	PhotoRef     string    `json:"photo_ref"`
	Set          PhotoSet  `json:"set"`
	RemovedBy    string    `json:"removed_by"`
	PostRelease  bool      `json:"post_release"`
	RemovedAt    time.Time `json:"removed_at"`
}

type EventKind string

const (
	EventMeeting  EventKind = "meeting"
	EventPersonal EventKind = "personal"
)

type Event struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      EventKind `json:"kind"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

type CommitmentKind string

const (
	CommitmentService    CommitmentKind = "service"
	CommitmentAllocation CommitmentKind = "allocation"
)

// Commitment is the normalized view the allocation engine checks conflicts
// against: one-off scheduled work carries Date, recurring staffing carries a
// date range plus weekdays.
type Commitment struct {
	Kind            CommitmentKind `json:"kind"`
	ID              string         `json:"id"`
	CollaboratorIDs []string       `json:"collaborator_ids"`
	Date            *time.Time     `json:"date,omitempty"`
	StartDate       *time.Time     `json:"start_date,omitempty"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	Weekdays        []time.Weekday `json:"weekdays,omitempty"`
	Start           string         `json:"start"`
	End             string         `json:"end"`
}

// AgendaItem is one entry of the merged per-actor calendar.
type AgendaItem struct {
	Kind     string    `json:"kind"`
	RefID    string    `json:"ref_id"`
	ClientID string    `json:"client_id,omitempty"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
	Status   string    `json:"status,omitempty"`
}
