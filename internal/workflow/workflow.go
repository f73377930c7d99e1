package workflow

import (
	"errors"
	"strings"

	"claims-service/internal/models"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

type Role string

const (
	RoleClaimer  Role = "CLAIMER"
	RoleApprover Role = "APPROVER"
	RoleFinance  Role = "FINANCE"
	RoleAdmin    Role = "ADMIN"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrUnauthorized      = errors.New("actor role not permitted for transition")
	ErrReasonRequired    = errors.New("transition requires a non-empty reason")
)

// edge describes one legal transition of the claim state machine.
type edge struct {
	actors       []Role
	reasonNeeded bool
	storesReason bool
}

type transition struct {
	from Status
	to   Status
}

// Cancellation is open to the claim owner and the admin from every
// non-terminal status, so it is handled separately from this table.
var edges = map[transition]edge{
	{StatusPending, StatusApproved}: {actors: []Role{RoleApprover}, reasonNeeded: true, storesReason: true},
	{StatusPending, StatusRejected}: {actors: []Role{RoleApprover}, reasonNeeded: true, storesReason: true},
	{StatusApproved, StatusPaid}:    {actors: []Role{RoleFinance}},
}

// IsTerminal reports whether no further transition may leave the status.
// Terminal claims also lock their discussion thread.
func IsTerminal(s Status) bool {
	return s == StatusPaid || s == StatusCancelled
}

// RequestTransition applies one edge of the state machine to a copy of the
// claim. The input claim is never mutated: on any failure the caller still
// holds the claim exactly as it was.
func RequestTransition(claim models.Claim, actor Role, target Status, reason string) (models.Claim, error) {
	current := Status(claim.Status)

	if target == StatusCancelled {
		if IsTerminal(current) {
			return claim, ErrInvalidTransition
		}
		if actor != RoleAdmin && actor != RoleClaimer {
			return claim, ErrUnauthorized
		}
		next := claim
		next.Status = string(StatusCancelled)
		return next, nil
	}

	e, ok := edges[transition{current, target}]
	if !ok {
		return claim, ErrInvalidTransition
	}

	permitted := false
	for _, a := range e.actors {
		if a == actor {
			permitted = true
			break
		}
	}
	if !permitted {
		return claim, ErrUnauthorized
	}

	if e.reasonNeeded && strings.TrimSpace(reason) == "" {
		return claim, ErrReasonRequired
	}

	next := claim
	next.Status = string(target)
	if e.storesReason {
		next.ReasonApprover = reason
	}
	return next, nil
}
