package models

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID        uuid.UUID
	Name      string
	RoleLabel string
	AvatarURL string
	IsActive  bool
}

type Claim struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	StaffID        uuid.UUID
	Status         string
	ReasonClaimer  string
	ReasonApprover string
	Hours          float64
	DateFrom       time.Time
	DateTo         time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Project struct {
	ID       uuid.UUID
	Name     string
	DateFrom time.Time
	DateTo   time.Time
	Roles    []*ProjectRole
}

// ProjectRole is one row of the project role table: a staff member
// occupying a named slot on a project.
type ProjectRole struct {
	ProjectID uuid.UUID
	StaffID   uuid.UUID
	Slot      string
}

type Comment struct {
	ID        uuid.UUID
	ClaimID   uuid.UUID
	Author    Staff
	Body      string
	CreatedAt time.Time
	Replies   []*Reply
}

type Reply struct {
	ID        uuid.UUID
	CommentID uuid.UUID
	Author    Staff
	Body      string
	CreatedAt time.Time
}
