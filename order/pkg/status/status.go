package status

import (
	"fmt"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Renting   Status = "renting"
	Returned  Status = "returned"
	Cancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	Pending:   {Confirmed, Cancelled},
	Confirmed: {Renting, Cancelled},
	Renting:   {Returned, Cancelled},
	Returned:  {},
	Cancelled: {},
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown order status %q", inErrors.ErrValidation, s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Transition returns ErrInvalidState when next is not reachable from s in one step.
func (s Status) Transition(next Status) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: order cannot move from %s to %s", inErrors.ErrInvalidState, s, next)
	}
	return nil
}
