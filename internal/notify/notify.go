package notify

import "context"

type Kind string

const (
	KindDelegated      Kind = "request-delegated"
	KindRefused        Kind = "request-refused"
	KindEscalated      Kind = "request-escalated"
	KindDateProposed   Kind = "date-proposed"
	KindDateConfirmed  Kind = "date-confirmed"
	KindDateDeclined   Kind = "date-declined"
	KindPhotosReleased Kind = "photos-released"
)

type Event struct {
	Kind      Kind   `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
	ServiceID string `json:"service_id,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Notifier delivers lifecycle events to an external channel. Delivery is
// fire-and-forget: the core logs failures and moves on.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
