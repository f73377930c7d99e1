package discussion_test

import (
	"fmt"
	"testing"
	"time"

	"claims-service/internal/discussion"
	"claims-service/internal/models"
	"claims-service/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func makeThread(n int, base time.Time) []*models.Comment {
	comments := make([]*models.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, &models.Comment{
			ID:        uuid.New(),
			Body:      fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return comments
}

func TestValidateSubmission(t *testing.T) {
	t.Run("locked thread", func(t *testing.T) {
		err := discussion.ValidateSubmission(string(workflow.StatusPaid), "hello")
		require.ErrorIs(t, err, discussion.ErrLockedThread)

		err = discussion.ValidateSubmission(string(workflow.StatusCancelled), "hello")
		require.ErrorIs(t, err, discussion.ErrLockedThread)
	})

	t.Run("empty body", func(t *testing.T) {
		err := discussion.ValidateSubmission(string(workflow.StatusPending), "   ")
		require.ErrorIs(t, err, discussion.ErrEmptyBody)
	})

	t.Run("open thread accepts", func(t *testing.T) {
		require.NoError(t, discussion.ValidateSubmission(string(workflow.StatusPending), "hello"))
		require.NoError(t, discussion.ValidateSubmission(string(workflow.StatusApproved), "hello"))
	})
}

func TestScrollResolution(t *testing.T) {
	t.Run("comment scroll emitted exactly once", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		_, applied := e.ApplySnapshot(gen, nil)
		require.True(t, applied)

		e.NoteCommentSubmitted()

		thread := makeThread(1, clock.now)

		gen = e.BeginLoad()
		scroll, applied := e.ApplySnapshot(gen, thread)
		require.True(t, applied)
		require.NotNil(t, scroll)
		require.True(t, scroll.Newest)

		// identical snapshot again: directive must not repeat
		gen = e.BeginLoad()
		scroll, applied = e.ApplySnapshot(gen, thread)
		require.True(t, applied)
		require.Nil(t, scroll)
	})

	t.Run("reply scroll targets the parent comment", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))
		thread := makeThread(3, clock.now)
		parent := thread[1]

		gen := e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, thread)

		e.NoteReplySubmitted(parent.ID)

		gen = e.BeginLoad()
		scroll, _ := e.ApplySnapshot(gen, thread)
		require.NotNil(t, scroll)
		require.False(t, scroll.Newest)
		require.Equal(t, parent.ID, scroll.CommentID)
	})

	t.Run("intent survives snapshots without the target", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))
		thread := makeThread(2, clock.now)

		gen := e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, thread)

		// reply created but store propagation lags: next snapshot lacks it
		pending := uuid.New()
		e.NoteReplySubmitted(pending)

		gen = e.BeginLoad()
		scroll, _ := e.ApplySnapshot(gen, thread)
		require.Nil(t, scroll)
		require.NotNil(t, e.View(1).PendingScroll)

		// target arrives later, intent still resolves
		late := append(thread, &models.Comment{ID: pending, CreatedAt: clock.now.Add(time.Hour)})
		gen = e.BeginLoad()
		scroll, _ = e.ApplySnapshot(gen, late)
		require.NotNil(t, scroll)
		require.Equal(t, pending, scroll.CommentID)
		require.Nil(t, e.View(1).PendingScroll)
	})
}

func TestSupersession(t *testing.T) {
	clock := newClock()
	e := discussion.NewEngine(discussion.WithClock(clock.Now))

	oldThread := makeThread(1, clock.now)
	newThread := makeThread(5, clock.now)

	oldGen := e.BeginLoad()
	newGen := e.BeginLoad()

	// newest fetch resolves first
	_, applied := e.ApplySnapshot(newGen, newThread)
	require.True(t, applied)

	// stale result arrives afterwards and must be dropped whole
	_, applied = e.ApplySnapshot(oldGen, oldThread)
	require.False(t, applied)

	view := e.View(1)
	require.Equal(t, 5, view.TotalComments)
}

func TestLoadingPhases(t *testing.T) {
	t.Run("initial load exits on first snapshot", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		require.Equal(t, discussion.PhaseInitialLoad, e.Phase())

		_, _ = e.ApplySnapshot(gen, nil)
		require.Equal(t, discussion.PhaseIdle, e.Phase())
	})

	t.Run("initial load expires after its window", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		require.Equal(t, discussion.PhaseInitialLoad, e.Phase())

		clock.Advance(6 * time.Second)
		require.Equal(t, discussion.PhaseIdle, e.Phase())

		// the late snapshot is still applied
		_, applied := e.ApplySnapshot(gen, makeThread(2, clock.now))
		require.True(t, applied)
		require.Equal(t, 2, e.View(1).TotalComments)
	})

	t.Run("first comment window suppresses empty state", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, nil)
		require.Equal(t, discussion.PhaseIdle, e.Phase())

		e.NoteCommentSubmitted()
		require.Equal(t, discussion.PhaseAwaitingFirstComment, e.Phase())

		// empty refetch inside the window keeps suppressing
		gen = e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, nil)
		require.Equal(t, discussion.PhaseAwaitingFirstComment, e.Phase())

		// snapshot with the comment ends the window
		gen = e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, makeThread(1, clock.now))
		require.Equal(t, discussion.PhaseIdle, e.Phase())
	})

	t.Run("first comment window expires", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, nil)

		e.NoteCommentSubmitted()
		require.Equal(t, discussion.PhaseAwaitingFirstComment, e.Phase())

		clock.Advance(3 * time.Second)
		require.Equal(t, discussion.PhaseIdle, e.Phase())
	})

	t.Run("submitting into a populated thread stays idle", func(t *testing.T) {
		clock := newClock()
		e := discussion.NewEngine(discussion.WithClock(clock.Now))

		gen := e.BeginLoad()
		_, _ = e.ApplySnapshot(gen, makeThread(2, clock.now))

		e.NoteCommentSubmitted()
		require.Equal(t, discussion.PhaseIdle, e.Phase())
	})
}

func TestPaginate(t *testing.T) {
	clock := newClock()
	e := discussion.NewEngine(discussion.WithClock(clock.Now))

	thread := makeThread(23, clock.now)
	gen := e.BeginLoad()
	_, _ = e.ApplySnapshot(gen, thread)

	t.Run("round trip covers every comment once", func(t *testing.T) {
		seen := make(map[uuid.UUID]bool)
		for page := 1; page <= 3; page++ {
			comments, totalPages := e.Paginate(page, 10)
			require.Equal(t, 3, totalPages)
			for _, c := range comments {
				require.False(t, seen[c.ID], "comment %s duplicated across pages", c.ID)
				seen[c.ID] = true
			}
		}
		require.Len(t, seen, 23)

		last, _ := e.Paginate(3, 10)
		require.Len(t, last, 3)
	})

	t.Run("most recent first", func(t *testing.T) {
		comments, _ := e.Paginate(1, 10)
		for i := 1; i < len(comments); i++ {
			require.False(t, comments[i-1].CreatedAt.Before(comments[i].CreatedAt))
		}
	})

	t.Run("out of range pages clamp", func(t *testing.T) {
		high, _ := e.Paginate(99, 10)
		require.Len(t, high, 3)

		low, _ := e.Paginate(0, 10)
		require.Len(t, low, 10)
	})

	t.Run("empty thread", func(t *testing.T) {
		empty := discussion.NewEngine(discussion.WithClock(clock.Now))
		comments, totalPages := empty.Paginate(1, 10)
		require.Empty(t, comments)
		require.Zero(t, totalPages)
	})
}

func TestRepliesKeepCreationOrder(t *testing.T) {
	clock := newClock()
	e := discussion.NewEngine(discussion.WithClock(clock.Now))

	base := clock.now
	comment := &models.Comment{
		ID:        uuid.New(),
		CreatedAt: base,
		Replies: []*models.Reply{
			{ID: uuid.New(), Body: "third", CreatedAt: base.Add(3 * time.Minute)},
			{ID: uuid.New(), Body: "first", CreatedAt: base.Add(1 * time.Minute)},
			{ID: uuid.New(), Body: "second", CreatedAt: base.Add(2 * time.Minute)},
		},
	}

	gen := e.BeginLoad()
	_, _ = e.ApplySnapshot(gen, []*models.Comment{comment})

	view := e.View(1)
	require.Len(t, view.Comments, 1)
	replies := view.Comments[0].Replies
	require.Equal(t, "first", replies[0].Body)
	require.Equal(t, "second", replies[1].Body)
	require.Equal(t, "third", replies[2].Body)
}
