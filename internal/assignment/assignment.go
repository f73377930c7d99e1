package assignment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Slot names a role position on a project draft.
type Slot string

const (
	SlotPM                   Slot = "pm"
	SlotQA                   Slot = "qa"
	SlotTechnicalLead        Slot = "technicalLead"
	SlotBA                   Slot = "ba"
	SlotDevelopers           Slot = "developers"
	SlotTesters              Slot = "testers"
	SlotTechnicalConsultancy Slot = "technicalConsultancy"
)

// singularSlots hold at most one staff member; the rest hold a set.
var singularSlots = map[Slot]bool{
	SlotPM: true,
	SlotQA: true,
}

var allSlots = []Slot{
	SlotPM,
	SlotQA,
	SlotTechnicalLead,
	SlotBA,
	SlotDevelopers,
	SlotTesters,
	SlotTechnicalConsultancy,
}

var ErrAlreadyAssigned = errors.New("staff already assigned to another slot")

// ValidSlot reports whether s names one of the known role slots.
func ValidSlot(s Slot) bool {
	for _, slot := range allSlots {
		if slot == s {
			return true
		}
	}
	return false
}

// Draft is an in-progress project edit. ID is uuid.Nil while the project is
// being created. Slot membership lives in one table keyed by slot name so
// the exclusivity scan never depends on per-slot code.
type Draft struct {
	ID       uuid.UUID
	Name     string
	DateFrom time.Time
	DateTo   time.Time
	slots    map[Slot][]uuid.UUID
}

// NewDraft returns an empty draft for project creation.
func NewDraft() Draft {
	return Draft{slots: emptySlots()}
}

// DraftFromAssignments rebuilds a draft from persisted slot rows, for the
// edit flow.
func DraftFromAssignments(id uuid.UUID, name string, from, to time.Time, assigned map[Slot][]uuid.UUID) Draft {
	d := Draft{ID: id, Name: name, DateFrom: from, DateTo: to, slots: emptySlots()}
	for slot, ids := range assigned {
		d.slots[slot] = append([]uuid.UUID(nil), ids...)
	}
	return d
}

func emptySlots() map[Slot][]uuid.UUID {
	m := make(map[Slot][]uuid.UUID, len(allSlots))
	for _, s := range allSlots {
		m[s] = nil
	}
	return m
}

// Members returns the staff currently occupying a slot, in insertion order.
func (d Draft) Members(slot Slot) []uuid.UUID {
	return append([]uuid.UUID(nil), d.slots[slot]...)
}

// Assignments flattens the draft into slot rows for persistence.
func (d Draft) Assignments() map[Slot][]uuid.UUID {
	out := make(map[Slot][]uuid.UUID, len(allSlots))
	for slot, ids := range d.slots {
		if len(ids) > 0 {
			out[slot] = append([]uuid.UUID(nil), ids...)
		}
	}
	return out
}

func (d Draft) contains(slot Slot, staffID uuid.UUID) bool {
	for _, id := range d.slots[slot] {
		if id == staffID {
			return true
		}
	}
	return false
}

// clone copies the draft deeply enough that mutating the copy's slots never
// touches the original.
func (d Draft) clone() Draft {
	next := d
	next.slots = make(map[Slot][]uuid.UUID, len(d.slots))
	for slot, ids := range d.slots {
		next.slots[slot] = append([]uuid.UUID(nil), ids...)
	}
	return next
}

// IsAssignedElsewhere reports whether staffID occupies any slot other than
// excluding. Occupancy is re-derived from the draft on every call, so rapid
// repeated toggles cannot observe stale state.
func IsAssignedElsewhere(d Draft, staffID uuid.UUID, excluding Slot) bool {
	for _, slot := range allSlots {
		if slot == excluding {
			continue
		}
		if d.contains(slot, staffID) {
			return true
		}
	}
	return false
}

// ToggleAssignment removes staffID from slot if present, otherwise adds it.
// Removal is always permitted. Adding is rejected with ErrAlreadyAssigned
// when the staff member occupies any other slot; the returned draft is then
// the input draft unchanged.
func ToggleAssignment(d Draft, slot Slot, staffID uuid.UUID) (Draft, error) {
	if d.contains(slot, staffID) {
		next := d.clone()
		kept := next.slots[slot][:0]
		for _, id := range next.slots[slot] {
			if id != staffID {
				kept = append(kept, id)
			}
		}
		next.slots[slot] = kept
		return next, nil
	}

	if IsAssignedElsewhere(d, staffID, slot) {
		return d, ErrAlreadyAssigned
	}

	next := d.clone()
	if singularSlots[slot] {
		next.slots[slot] = []uuid.UUID{staffID}
	} else {
		next.slots[slot] = append(next.slots[slot], staffID)
	}
	return next, nil
}

// ClearSlot empties a slot. Always permitted.
func ClearSlot(d Draft, slot Slot) Draft {
	next := d.clone()
	next.slots[slot] = nil
	return next
}

// ValidateDraftForSubmit checks the draft is complete enough to persist.
// The returned map is keyed by field name; an empty map means valid. The
// draft itself is never touched.
func ValidateDraftForSubmit(d Draft) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "project name is required"
	}
	switch {
	case d.DateFrom.IsZero() || d.DateTo.IsZero():
		errs["duration"] = "project duration is required"
	case d.DateTo.Before(d.DateFrom):
		errs["duration"] = "project end date must not be before start date"
	}
	for _, slot := range allSlots {
		if len(d.slots[slot]) == 0 {
			errs[string(slot)] = fmt.Sprintf("slot %s must have at least one member", slot)
		}
	}
	return errs
}
