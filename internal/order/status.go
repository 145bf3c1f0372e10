package order

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusReady      Status = "ready"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every recognized status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusPreparing,
	StatusDelivering,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// transitions maps each status to its reachable targets, in the order
// they are presented to callers. A nil entry marks a terminal status.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusPreparing, StatusDelivering, StatusReady, StatusCancelled},
	StatusPreparing:  {StatusDelivering, StatusReady, StatusCancelled},
	StatusDelivering: {StatusDelivered, StatusCancelled},
	StatusReady:      {StatusDelivered, StatusCancelled},
	StatusDelivered:  nil,
	StatusRejected:   nil,
	StatusCancelled:  nil,
}

// ParseStatus validates a raw string at the system boundary. Unrecognized
// values are rejected here rather than propagated.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// ValidNextStates returns the ordered targets reachable from s. The result
// is a copy; callers may mutate it freely.
func ValidNextStates(s Status) []Status {
	targets := transitions[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// Transition is the outcome of validating a status change.
type Transition struct {
	Valid  bool
	Reason string
}

// ValidateTransition checks whether an order may move from current to
// next. A same-state change is always valid, terminal states included,
// so re-applying a status is idempotent. The reason names both states
// and the allowed targets so it can be shown to a user verbatim.
func ValidateTransition(current, next Status) Transition {
	if _, ok := transitions[current]; !ok {
		return Transition{Reason: fmt.Sprintf("unknown order status %q", string(current))}
	}
	if _, ok := transitions[next]; !ok {
		return Transition{Reason: fmt.Sprintf("unknown order status %q", string(next))}
	}
	if current == next {
		return Transition{Valid: true}
	}
	for _, allowed := range transitions[current] {
		if next == allowed {
			return Transition{Valid: true}
		}
	}
	return Transition{
		Reason: fmt.Sprintf("cannot change order status from %q to %q; allowed: %s",
			string(current), string(next), describeTargets(transitions[current])),
	}
}

func describeTargets(targets []Status) string {
	if len(targets) == 0 {
		return "none (terminal status)"
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
