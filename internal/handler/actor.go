package handler

import (
	"errors"

	"claims-service/internal/workflow"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

var errBadActor = errors.New("missing or invalid actor headers")

// actor is the authenticated caller as asserted by the gateway in front of
// this service. Authentication itself is out of scope; the identity arrives
// as explicit headers rather than ambient session state.
type actor struct {
	ID   uuid.UUID
	Role workflow.Role
}

func actorFrom(c echo.Context) (actor, error) {
	id, err := uuid.Parse(c.Request().Header.Get(headerActorID))
	if err != nil {
		return actor{}, errBadActor
	}

	role := workflow.Role(c.Request().Header.Get(headerActorRole))
	switch role {
	case workflow.RoleClaimer, workflow.RoleApprover, workflow.RoleFinance, workflow.RoleAdmin:
	default:
		return actor{}, errBadActor
	}

	return actor{ID: id, Role: role}, nil
}
