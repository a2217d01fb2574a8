package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrForbidden         = errors.New("not authorized")
	ErrProductSold       = errors.New("cannot update sold product")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// Actor is the authenticated caller of a product operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func CanMutate(a Actor, sellerID uuid.UUID) bool {
	return a.IsAdmin() || (a.ID != uuid.Nil && a.ID == sellerID)
}

type Event string

const (
	EventEdit     Event = "edit"
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
	EventMarkSold Event = "mark-sold"
	EventDelete   Event = "delete"
)

// Transition returns the status a product moves to when actor applies ev.
// reason is only consulted for EventReject.
func Transition(from Status, ev Event, a Actor, sellerID uuid.UUID, reason string) (Status, error) {
	switch ev {
	case EventEdit:
		if from == StatusSold {
			return from, ErrProductSold
		}
		if !CanMutate(a, sellerID) {
			return from, ErrForbidden
		}
		return from, nil

	case EventApprove, EventReject:
		if !a.IsAdmin() {
			return from, ErrForbidden
		}
		if from == StatusSold {
			return from, ErrProductSold
		}
		if from != StatusPending {
			return from, ErrInvalidTransition
		}
		if ev == EventApprove {
			return StatusApproved, nil
		}
		if strings.TrimSpace(reason) == "" {
			return from, ErrReasonRequired
		}
		return StatusRejected, nil

	case EventMarkSold:
		if !CanMutate(a, sellerID) {
			return from, ErrForbidden
		}
		if from == StatusSold {
			return from, ErrProductSold
		}
		if from != StatusApproved {
			return from, ErrInvalidTransition
		}
		return StatusSold, nil

	case EventDelete:
		if !CanMutate(a, sellerID) {
			return from, ErrForbidden
		}
		return from, nil
	}
	return from, ErrInvalidTransition
}

// Listable reports whether a product with this state shows up in public listings.
func Listable(s Status, isAvailable bool) bool {
	return s == StatusApproved && isAvailable
}
