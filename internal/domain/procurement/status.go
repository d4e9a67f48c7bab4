package procurement

// OrderStatus represents the lifecycle status of a purchase order
type OrderStatus string

const (
	StatusDraft           OrderStatus = "draft"
	StatusSubmitted       OrderStatus = "submitted"
	StatusPendingApproval OrderStatus = "pending_approval"
	StatusApproved        OrderStatus = "approved"
	StatusRejected        OrderStatus = "rejected"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusReceiving       OrderStatus = "receiving"
	StatusClosed          OrderStatus = "closed"
	StatusCancelled       OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	StatusDraft,
	StatusSubmitted,
	StatusPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusConfirmed,
	StatusReceiving,
	StatusClosed,
	StatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no action can leave
func (s OrderStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// IsEditable returns true if line content may change in this status
func (s OrderStatus) IsEditable() bool {
	return s == StatusDraft
}

// Action is a lifecycle operation applied to an existing order
type Action string

const (
	ActionCreate  Action = "create"
	ActionSubmit  Action = "submit"
	ActionRoute   Action = "route_for_approval"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReopen  Action = "reopen"
	ActionConfirm Action = "confirm"
	ActionReceipt Action = "record_receipt"
	ActionClose   Action = "close"
	ActionCancel  Action = "cancel"
)

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}

// transitionSources is the source side of the transition table.
// Targets are decided by the order methods since submit and record_receipt
// have data-dependent targets.
var transitionSources = map[Action][]OrderStatus{
	ActionSubmit:  {StatusDraft, StatusRejected},
	ActionRoute:   {StatusSubmitted},
	ActionApprove: {StatusPendingApproval},
	ActionReject:  {StatusPendingApproval},
	ActionReopen:  {StatusRejected},
	ActionConfirm: {StatusApproved},
	ActionReceipt: {StatusConfirmed, StatusReceiving},
	ActionClose:   {StatusConfirmed, StatusReceiving},
	ActionCancel: {
		StatusDraft,
		StatusSubmitted,
		StatusPendingApproval,
		StatusApproved,
		StatusRejected,
		StatusConfirmed,
		StatusReceiving,
	},
}

// AllowedFrom reports whether the action may be applied to an order in status s
func (a Action) AllowedFrom(s OrderStatus) bool {
	for _, src := range transitionSources[a] {
		if src == s {
			return true
		}
	}
	return false
}

// SourcesOf returns the statuses the action may be applied from
func SourcesOf(a Action) []OrderStatus {
	src := transitionSources[a]
	out := make([]OrderStatus, len(src))
	copy(out, src)
	return out
}
