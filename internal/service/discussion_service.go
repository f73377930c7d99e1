//go:generate mockgen -source=discussion_service.go -destination=../mocks/discussion_service.go -package=mocks .

package service

import (
	"context"
	"sync"

	"claims-service/internal/discussion"
	"claims-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentRepository interface {
	// Получить все комментарии заявки с ответами
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*models.Comment, error)

	// Создать комментарий
	CreateComment(ctx context.Context, claimID, authorID uuid.UUID, body string) (uuid.UUID, error)

	// Создать ответ на комментарий
	CreateReply(ctx context.Context, commentID, authorID uuid.UUID, body string) (uuid.UUID, error)
}

// DiscussionService coordinates claim threads between the comment store and
// per-claim discussion engines. Engines are single-threaded state machines;
// the mutex serializes HTTP-boundary access to them.
type DiscussionService struct {
	claimRepo   ClaimRepository
	commentRepo CommentRepository

	mu         sync.Mutex
	engines    map[uuid.UUID]*discussion.Engine
	engineOpts []discussion.Option

	log *zap.Logger
}

func NewDiscussionService(claimRepo ClaimRepository, commentRepo CommentRepository, log *zap.Logger, engineOpts ...discussion.Option) *DiscussionService {
	return &DiscussionService{
		claimRepo:   claimRepo,
		commentRepo: commentRepo,
		engines:     make(map[uuid.UUID]*discussion.Engine),
		engineOpts:  engineOpts,
		log:         log,
	}
}

func (s *DiscussionService) engineFor(claimID uuid.UUID) *discussion.Engine {
	if e, ok := s.engines[claimID]; ok {
		return e
	}
	e := discussion.NewEngine(s.engineOpts...)
	s.engines[claimID] = e
	return e
}

// ThreadView fetches the thread and returns the requested page plus a
// one-shot scroll directive when a previously submitted comment or reply
// became visible in this snapshot. A fetch superseded by a newer one for
// the same claim is discarded by the engine.
func (s *DiscussionService) ThreadView(ctx context.Context, claimID uuid.UUID, page int) (discussion.View, *discussion.ScrollTarget, error) {
	s.mu.Lock()
	engine := s.engineFor(claimID)
	gen := engine.BeginLoad()
	s.mu.Unlock()

	comments, err := s.commentRepo.ListByClaim(ctx, claimID)
	if err != nil {
		s.log.Error("failed to fetch thread",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
		)
		return discussion.View{}, nil, storeErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scroll, _ := engine.ApplySnapshot(gen, comments)
	return engine.View(page), scroll, nil
}

// SubmitComment creates a comment on an unlocked claim thread. Lock and
// emptiness checks run before any store write.
func (s *DiscussionService) SubmitComment(ctx context.Context, claimID, authorID uuid.UUID, body string) (uuid.UUID, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.log.Error("failed to get claim",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
		)
		return uuid.Nil, storeErr(err)
	}

	if err := discussion.ValidateSubmission(claim.Status, body); err != nil {
		s.log.Warn("comment rejected",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
		)
		return uuid.Nil, err
	}

	id, err := s.commentRepo.CreateComment(ctx, claimID, authorID, body)
	if err != nil {
		s.log.Error("failed to create comment",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
		)
		return uuid.Nil, storeErr(err)
	}

	s.mu.Lock()
	s.engineFor(claimID).NoteCommentSubmitted()
	s.mu.Unlock()

	s.log.Info("comment created",
		zap.String("claim_id", claimID.String()),
		zap.String("comment_id", id.String()),
	)

	return id, nil
}

// SubmitReply creates a reply beneath an existing comment. Any author may
// reply, including to their own comment; only a locked thread rejects.
func (s *DiscussionService) SubmitReply(ctx context.Context, claimID, commentID, authorID uuid.UUID, body string) (uuid.UUID, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.log.Error("failed to get claim",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
		)
		return uuid.Nil, storeErr(err)
	}

	if err := discussion.ValidateSubmission(claim.Status, body); err != nil {
		s.log.Warn("reply rejected",
			zap.Error(err),
			zap.String("claim_id", claimID.String()),
			zap.String("comment_id", commentID.String()),
		)
		return uuid.Nil, err
	}

	id, err := s.commentRepo.CreateReply(ctx, commentID, authorID, body)
	if err != nil {
		s.log.Error("failed to create reply",
			zap.Error(err),
			zap.String("comment_id", commentID.String()),
		)
		return uuid.Nil, storeErr(err)
	}

	s.mu.Lock()
	s.engineFor(claimID).NoteReplySubmitted(commentID)
	s.mu.Unlock()

	s.log.Info("reply created",
		zap.String("claim_id", claimID.String()),
		zap.String("comment_id", commentID.String()),
		zap.String("reply_id", id.String()),
	)

	return id, nil
}
