package discussion

import (
	"errors"
	"sort"
	"strings"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/workflow"

	"github.com/google/uuid"
)

var (
	ErrLockedThread = errors.New("discussion thread is locked")
	ErrEmptyBody    = errors.New("comment body must not be empty")
)

// Phase is the loading phase of a claim's thread. It only controls what the
// UI shows in the interim, never whether data is accepted.
type Phase string

const (
	// PhaseInitialLoad covers the window between opening a claim and the
	// first store response.
	PhaseInitialLoad Phase = "INITIAL_LOAD"
	// PhaseAwaitingFirstComment suppresses the empty-thread view while the
	// very first comment's store round-trip completes.
	PhaseAwaitingFirstComment Phase = "AWAITING_FIRST_COMMENT"
	PhaseIdle                 Phase = "IDLE"
)

const (
	defaultInitialLoadWindow  = 5 * time.Second
	defaultFirstCommentWindow = 2 * time.Second
	defaultPageSize           = 10
)

// ScrollTarget tells the UI which element to bring into view. Newest means
// "the most recent comment, whichever it is"; otherwise CommentID names the
// parent comment of a freshly created reply.
type ScrollTarget struct {
	Newest    bool
	CommentID uuid.UUID
}

type pendingScroll struct {
	seq    uint64
	target ScrollTarget
}

// View is the display-ready projection of one thread page.
type View struct {
	Comments      []*models.Comment
	Page          int
	TotalPages    int
	TotalComments int
	Phase         Phase
	// PendingScroll is the still-unresolved scroll intent, if any. The
	// one-shot "scroll now" directive is returned by ApplySnapshot instead.
	PendingScroll *ScrollTarget
}

// Engine owns the in-memory view of one claim's comment thread: ordering,
// pagination, scroll intent, and the loading-phase windows. It is operated
// from a single interaction context; callers serialize access.
type Engine struct {
	now                func() time.Time
	pageSize           int
	initialLoadWindow  time.Duration
	firstCommentWindow time.Duration

	gen           uint64
	loaded        bool
	comments      []*models.Comment
	phase         Phase
	phaseDeadline time.Time

	actionSeq uint64
	scroll    *pendingScroll
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithPageSize(n int) Option {
	return func(e *Engine) { e.pageSize = n }
}

func WithWindows(initialLoad, firstComment time.Duration) Option {
	return func(e *Engine) {
		e.initialLoadWindow = initialLoad
		e.firstCommentWindow = firstComment
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:                time.Now,
		pageSize:           defaultPageSize,
		initialLoadWindow:  defaultInitialLoadWindow,
		firstCommentWindow: defaultFirstCommentWindow,
		phase:              PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateSubmission gates comment and reply creation. It must pass before
// any store call is made: a locked thread or blank body never reaches the
// store.
func ValidateSubmission(claimStatus string, body string) error {
	if workflow.IsTerminal(workflow.Status(claimStatus)) {
		return ErrLockedThread
	}
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// BeginLoad marks the start of a thread fetch and returns its generation.
// A snapshot delivered for an older generation is discarded: the newest
// fetch for the claim wins regardless of arrival order.
func (e *Engine) BeginLoad() uint64 {
	e.gen++
	if !e.loaded {
		e.phase = PhaseInitialLoad
		e.phaseDeadline = e.now().Add(e.initialLoadWindow)
	}
	return e.gen
}

// NoteCommentSubmitted records the intent to scroll to the newest comment
// once the store round-trip completes. Submitting into an empty thread
// enters the first-comment window so the UI never flashes the empty state.
func (e *Engine) NoteCommentSubmitted() {
	e.actionSeq++
	e.scroll = &pendingScroll{seq: e.actionSeq, target: ScrollTarget{Newest: true}}
	if len(e.comments) == 0 {
		e.phase = PhaseAwaitingFirstComment
		e.phaseDeadline = e.now().Add(e.firstCommentWindow)
	}
}

// NoteReplySubmitted records the intent to scroll to the parent comment of
// a new reply, keeping the conversation in view rather than jumping past it.
func (e *Engine) NoteReplySubmitted(parentID uuid.UUID) {
	e.actionSeq++
	e.scroll = &pendingScroll{seq: e.actionSeq, target: ScrollTarget{CommentID: parentID}}
}

// ApplySnapshot replaces the thread with a store snapshot. Stale generations
// are dropped whole. The returned ScrollTarget is non-nil exactly once per
// recorded scroll intent: the first snapshot in which the awaited element is
// visible resolves it, later identical snapshots are no-ops. A snapshot
// arriving after a phase window has closed is still applied.
func (e *Engine) ApplySnapshot(gen uint64, comments []*models.Comment) (*ScrollTarget, bool) {
	if gen != e.gen {
		return nil, false
	}

	e.comments = sortThread(comments)
	e.loaded = true

	if e.phase == PhaseInitialLoad || (e.phase == PhaseAwaitingFirstComment && len(e.comments) > 0) {
		e.phase = PhaseIdle
	}

	if e.scroll != nil && e.scrollTargetVisible(e.scroll.target) {
		resolved := e.scroll.target
		e.scroll = nil
		return &resolved, true
	}
	return nil, true
}

func (e *Engine) scrollTargetVisible(t ScrollTarget) bool {
	if t.Newest {
		return len(e.comments) > 0
	}
	for _, c := range e.comments {
		if c.ID == t.CommentID {
			return true
		}
	}
	return false
}

// Phase reports the current loading phase, collapsing an expired window to
// idle.
func (e *Engine) Phase() Phase {
	if e.phase != PhaseIdle && e.now().After(e.phaseDeadline) {
		e.phase = PhaseIdle
	}
	return e.phase
}

// Paginate returns one most-recent-first page of the thread. Replies keep
// creation order beneath their parents. Out-of-range pages are clamped.
func (e *Engine) Paginate(page, size int) ([]*models.Comment, int) {
	if size <= 0 {
		size = e.pageSize
	}
	total := len(e.comments)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		return nil, 0
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return e.comments[start:end], totalPages
}

// View assembles the display-ready projection of the requested page.
func (e *Engine) View(page int) View {
	comments, totalPages := e.Paginate(page, e.pageSize)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	v := View{
		Comments:      comments,
		Page:          page,
		TotalPages:    totalPages,
		TotalComments: len(e.comments),
		Phase:         e.Phase(),
	}
	if e.scroll != nil {
		target := e.scroll.target
		v.PendingScroll = &target
	}
	return v
}

// sortThread orders comments most-recent-first and each comment's replies
// oldest-first, without touching the caller's slices.
func sortThread(comments []*models.Comment) []*models.Comment {
	sorted := make([]*models.Comment, len(comments))
	for i, c := range comments {
		cc := *c
		cc.Replies = append([]*models.Reply(nil), c.Replies...)
		sort.SliceStable(cc.Replies, func(a, b int) bool {
			return cc.Replies[a].CreatedAt.Before(cc.Replies[b].CreatedAt)
		})
		sorted[i] = &cc
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].CreatedAt.After(sorted[b].CreatedAt)
	})
	return sorted
}
