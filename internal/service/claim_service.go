//go:generate mockgen -source=claim_service.go -destination=../mocks/claim_service.go -package=mocks .

package service

import (
	"context"
	"strings"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/repository"
	"claims-service/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClaimRepository interface {
	// Создать заявку
	Create(ctx context.Context, claim *models.Claim) error

	// Получить заявку по ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)

	// Получить список заявок по фильтру
	List(ctx context.Context, filter repository.ClaimFilter) ([]*models.Claim, error)

	// Обновить статус и причину согласующего
	UpdateStatus(ctx context.Context, id uuid.UUID, status, reasonApprover string) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type TxManagerStub struct{}

func (TxManagerStub) Do(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type ClaimService struct {
	claimRepo ClaimRepository

	trManager TxManager

	log *zap.Logger
}

func NewClaimService(claimRepo ClaimRepository, trManager TxManager, log *zap.Logger) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		trManager: trManager,
		log:       log,
	}
}

// SubmitClaim validates and stores a new claim in Pending status.
func (s *ClaimService) SubmitClaim(ctx context.Context, claim *models.Claim) error {
	if errs := validateClaim(claim); len(errs) > 0 {
		s.log.Warn("claim rejected by validation",
			zap.Int("field_errors", len(errs)),
			zap.String("staff_id", claim.StaffID.String()),
		)
		return errs
	}

	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	now := time.Now()
	claim.Status = string(workflow.StatusPending)
	claim.ReasonApprover = ""
	claim.CreatedAt = now
	claim.UpdatedAt = now

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		return s.claimRepo.Create(ctx, claim)
	})
	if err != nil {
		s.log.Error("failed to create claim",
			zap.Error(err),
			zap.String("claim_id", claim.ID.String()),
		)
		return storeErr(err)
	}

	s.log.Info("claim submitted",
		zap.String("claim_id", claim.ID.String()),
		zap.String("project_id", claim.ProjectID.String()),
	)

	return nil
}

func (s *ClaimService) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("failed to get claim",
			zap.Error(err),
			zap.String("claim_id", id.String()),
		)
		return nil, storeErr(err)
	}
	return claim, nil
}

func (s *ClaimService) ListClaims(ctx context.Context, filter repository.ClaimFilter) ([]*models.Claim, error) {
	claims, err := s.claimRepo.List(ctx, filter)
	if err != nil {
		s.log.Error("failed to list claims", zap.Error(err))
		return nil, storeErr(err)
	}
	return claims, nil
}

// RequestTransition applies one workflow edge and persists it atomically.
// Workflow rejections surface unchanged and nothing is written; the claim's
// previous status survives any failure.
func (s *ClaimService) RequestTransition(ctx context.Context, claimID uuid.UUID, actor workflow.Role, target workflow.Status, reason string) (*models.Claim, error) {
	next := &models.Claim{}
	txErr := s.trManager.Do(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.GetByID(ctx, claimID)
		if err != nil {
			s.log.Error("failed to get claim",
				zap.Error(err),
				zap.String("claim_id", claimID.String()),
			)
			return storeErr(err)
		}

		updated, err := workflow.RequestTransition(*claim, actor, target, reason)
		if err != nil {
			s.log.Warn("transition rejected",
				zap.Error(err),
				zap.String("claim_id", claimID.String()),
				zap.String("from", claim.Status),
				zap.String("to", string(target)),
				zap.String("actor", string(actor)),
			)
			return err
		}

		if err := s.claimRepo.UpdateStatus(ctx, claimID, updated.Status, updated.ReasonApprover); err != nil {
			s.log.Error("failed to persist transition",
				zap.Error(err),
				zap.String("claim_id", claimID.String()),
			)
			return storeErr(err)
		}

		*next = updated
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("claim transitioned",
		zap.String("claim_id", claimID.String()),
		zap.String("status", next.Status),
	)

	return next, nil
}

func validateClaim(claim *models.Claim) ValidationError {
	errs := make(ValidationError)

	if claim.ProjectID == uuid.Nil {
		errs["project_id"] = "project is required"
	}
	if claim.StaffID == uuid.Nil {
		errs["staff_id"] = "staff is required"
	}
	if claim.Hours <= 0 {
		errs["hours"] = "hours must be positive"
	}
	if strings.TrimSpace(claim.ReasonClaimer) == "" {
		errs["reason_claimer"] = "reason is required"
	}
	switch {
	case claim.DateFrom.IsZero() || claim.DateTo.IsZero():
		errs["date_range"] = "date range is required"
	case claim.DateTo.Before(claim.DateFrom):
		errs["date_range"] = "end date must not be before start date"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
