package assignment_test

import (
	"testing"
	"time"

	"claims-service/internal/assignment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToggleAssignment(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	t.Run("add and remove from collection slot", func(t *testing.T) {
		draft := assignment.NewDraft()

		draft, err := assignment.ToggleAssignment(draft, assignment.SlotDevelopers, alice)
		require.NoError(t, err)
		require.Equal(t, []uuid.UUID{alice}, draft.Members(assignment.SlotDevelopers))

		// second toggle removes
		draft, err = assignment.ToggleAssignment(draft, assignment.SlotDevelopers, alice)
		require.NoError(t, err)
		require.Empty(t, draft.Members(assignment.SlotDevelopers))
	})

	t.Run("singular slot holds one member", func(t *testing.T) {
		draft := assignment.NewDraft()

		draft, err := assignment.ToggleAssignment(draft, assignment.SlotPM, alice)
		require.NoError(t, err)
		require.Equal(t, []uuid.UUID{alice}, draft.Members(assignment.SlotPM))
	})

	t.Run("rejects second slot for same staff", func(t *testing.T) {
		draft := assignment.NewDraft()

		draft, err := assignment.ToggleAssignment(draft, assignment.SlotPM, alice)
		require.NoError(t, err)

		before := draft
		after, err := assignment.ToggleAssignment(draft, assignment.SlotDevelopers, alice)
		require.ErrorIs(t, err, assignment.ErrAlreadyAssigned)
		require.Equal(t, before.Members(assignment.SlotPM), after.Members(assignment.SlotPM))
		require.Empty(t, after.Members(assignment.SlotDevelopers), "rejected toggle must leave the draft unchanged")
	})

	t.Run("removal frees the staff for another slot", func(t *testing.T) {
		draft := assignment.NewDraft()

		draft, err := assignment.ToggleAssignment(draft, assignment.SlotQA, alice)
		require.NoError(t, err)

		// undo, then reassign elsewhere
		draft, err = assignment.ToggleAssignment(draft, assignment.SlotQA, alice)
		require.NoError(t, err)

		draft, err = assignment.ToggleAssignment(draft, assignment.SlotTesters, alice)
		require.NoError(t, err)
		require.Equal(t, []uuid.UUID{alice}, draft.Members(assignment.SlotTesters))
	})

	t.Run("invariant holds over a toggle sequence", func(t *testing.T) {
		draft := assignment.NewDraft()
		staff := []uuid.UUID{alice, bob, uuid.New(), uuid.New()}
		slots := []assignment.Slot{
			assignment.SlotPM, assignment.SlotQA,
			assignment.SlotDevelopers, assignment.SlotTesters,
			assignment.SlotBA, assignment.SlotTechnicalLead,
		}

		for i := 0; i < 50; i++ {
			slot := slots[i%len(slots)]
			id := staff[i%len(staff)]

			next, err := assignment.ToggleAssignment(draft, slot, id)
			if err != nil {
				require.ErrorIs(t, err, assignment.ErrAlreadyAssigned)
				continue
			}
			draft = next

			seen := make(map[uuid.UUID]int)
			for _, s := range slots {
				for _, member := range draft.Members(s) {
					seen[member]++
				}
			}
			for member, count := range seen {
				require.Equal(t, 1, count, "staff %s occupies %d slots", member, count)
			}
		}
	})
}

func TestIsAssignedElsewhere(t *testing.T) {
	alice := uuid.New()

	draft := assignment.NewDraft()
	draft, err := assignment.ToggleAssignment(draft, assignment.SlotBA, alice)
	require.NoError(t, err)

	require.True(t, assignment.IsAssignedElsewhere(draft, alice, assignment.SlotDevelopers))
	require.False(t, assignment.IsAssignedElsewhere(draft, alice, assignment.SlotBA))
	require.False(t, assignment.IsAssignedElsewhere(draft, uuid.New(), assignment.SlotDevelopers))
}

func TestClearSlot(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	draft := assignment.NewDraft()
	draft, err := assignment.ToggleAssignment(draft, assignment.SlotDevelopers, alice)
	require.NoError(t, err)
	draft, err = assignment.ToggleAssignment(draft, assignment.SlotDevelopers, bob)
	require.NoError(t, err)

	cleared := assignment.ClearSlot(draft, assignment.SlotDevelopers)
	require.Empty(t, cleared.Members(assignment.SlotDevelopers))
	require.Len(t, draft.Members(assignment.SlotDevelopers), 2, "clearing returns a new draft")

	// cleared members may be reassigned
	cleared, err = assignment.ToggleAssignment(cleared, assignment.SlotPM, alice)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{alice}, cleared.Members(assignment.SlotPM))
}

func fullDraft(t *testing.T) assignment.Draft {
	t.Helper()

	draft := assignment.NewDraft()
	draft.Name = "Website relaunch"
	draft.DateFrom = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	draft.DateTo = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	slots := []assignment.Slot{
		assignment.SlotPM, assignment.SlotQA,
		assignment.SlotTechnicalLead, assignment.SlotBA,
		assignment.SlotDevelopers, assignment.SlotTesters,
		assignment.SlotTechnicalConsultancy,
	}
	for _, slot := range slots {
		var err error
		draft, err = assignment.ToggleAssignment(draft, slot, uuid.New())
		require.NoError(t, err)
	}
	return draft
}

func TestValidateDraftForSubmit(t *testing.T) {
	t.Run("complete draft is valid", func(t *testing.T) {
		errs := assignment.ValidateDraftForSubmit(fullDraft(t))
		require.Empty(t, errs)
	})

	t.Run("missing name", func(t *testing.T) {
		draft := fullDraft(t)
		draft.Name = "  "
		errs := assignment.ValidateDraftForSubmit(draft)
		require.Contains(t, errs, "name")
	})

	t.Run("end before start", func(t *testing.T) {
		draft := fullDraft(t)
		draft.DateFrom = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
		draft.DateTo = time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

		errs := assignment.ValidateDraftForSubmit(draft)
		require.Contains(t, errs, "duration")

		draft.DateTo = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		errs = assignment.ValidateDraftForSubmit(draft)
		require.NotContains(t, errs, "duration")
	})

	t.Run("empty slots reported per field", func(t *testing.T) {
		draft := assignment.NewDraft()
		draft.Name = "Bare"
		draft.DateFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		draft.DateTo = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

		errs := assignment.ValidateDraftForSubmit(draft)
		require.Contains(t, errs, "pm")
		require.Contains(t, errs, "qa")
		require.Contains(t, errs, "developers")
		require.Contains(t, errs, "testers")
		require.Contains(t, errs, "ba")
		require.Contains(t, errs, "technicalLead")
		require.Contains(t, errs, "technicalConsultancy")
	})
}
