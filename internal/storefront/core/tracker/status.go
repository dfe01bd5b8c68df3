// Package tracker projects the status of the user's active order onto the
// four delivery stages shown by the storefront.
package tracker

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusDelivery   Status = "delivery"
	StatusDelivering Status = "delivering"
	StatusArrived    Status = "arrived"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// StatusInfo describes how a status is displayed. Stage is the index of the
// stage whose key equals the status; any status that is not a stage key,
// known or not, gets stage 0.
type StatusInfo struct {
	Stage    int
	Label    string
	Color    string
	Terminal bool
	Known    bool
}

var statusTable = map[Status]StatusInfo{
	StatusPending:    {Stage: 0, Label: "Pending", Color: "yellow", Known: true},
	StatusConfirmed:  {Stage: 0, Label: "Confirmed", Color: "blue", Known: true},
	StatusPreparing:  {Stage: 1, Label: "Preparing", Color: "purple", Known: true},
	StatusDelivery:   {Stage: 2, Label: "On the way", Color: "orange", Known: true},
	StatusDelivering: {Stage: 0, Label: "On the way", Color: "orange", Known: true},
	StatusArrived:    {Stage: 3, Label: "Arrived", Color: "green", Known: true},
	StatusDelivered:  {Stage: 0, Label: "Delivered", Color: "green", Known: true},
	StatusCompleted:  {Stage: 0, Label: "Completed", Color: "green", Terminal: true, Known: true},
	StatusCancelled:  {Stage: 0, Label: "Cancelled", Color: "red", Terminal: true, Known: true},
}

// Describe returns the display info for status. Unknown statuses keep their
// raw text as label.
func Describe(status string) StatusInfo {
	if info, ok := statusTable[Status(status)]; ok {
		return info
	}
	label := status
	if label == "" {
		label = "Unknown"
	}
	return StatusInfo{Stage: 0, Label: label, Color: "gray"}
}

// Statuses lists every status the backend is known to send.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusConfirmed, StatusPreparing, StatusDelivery, StatusDelivering,
		StatusArrived, StatusDelivered, StatusCompleted, StatusCancelled,
	}
}

type Stage struct {
	Key   Status
	Label string
	Icon  string
}

var stages = []Stage{
	{Key: StatusConfirmed, Label: "Received", Icon: "📝"},
	{Key: StatusPreparing, Label: "In the kitchen", Icon: "🔥"},
	{Key: StatusDelivery, Label: "On the way", Icon: "🛵"},
	{Key: StatusArrived, Label: "Arrived", Icon: "🏠"},
}

func Stages() []Stage {
	return append([]Stage(nil), stages...)
}
