package service_test

import (
	"errors"
	"testing"
	"time"

	"claims-service/internal/mocks"
	"claims-service/internal/models"
	"claims-service/internal/repository"
	"claims-service/internal/service"
	"claims-service/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func validClaim() *models.Claim {
	return &models.Claim{
		ProjectID:     uuid.New(),
		StaffID:       uuid.New(),
		Hours:         8,
		DateFrom:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		ReasonClaimer: "overtime on release",
	}
}

func TestClaimService_SubmitClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claimRepo := mocks.NewMockClaimRepository(ctrl)
	tx := service.TxManagerStub{}

	svc := service.NewClaimService(claimRepo, tx, zap.NewNop())
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		claim := validClaim()
		claimRepo.EXPECT().
			Create(ctx, claim).
			Return(nil)

		err := svc.SubmitClaim(ctx, claim)
		require.NoError(t, err)
		require.Equal(t, string(workflow.StatusPending), claim.Status)
		require.NotEqual(t, uuid.Nil, claim.ID)
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		claim := validClaim()
		claim.Hours = 0
		claim.ReasonClaimer = "  "

		err := svc.SubmitClaim(ctx, claim)

		var fieldErrs service.ValidationError
		require.ErrorAs(t, err, &fieldErrs)
		require.Contains(t, fieldErrs, "hours")
		require.Contains(t, fieldErrs, "reason_claimer")
	})

	t.Run("inverted date range", func(t *testing.T) {
		claim := validClaim()
		claim.DateFrom = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		claim.DateTo = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		err := svc.SubmitClaim(ctx, claim)

		var fieldErrs service.ValidationError
		require.ErrorAs(t, err, &fieldErrs)
		require.Contains(t, fieldErrs, "date_range")
	})

	t.Run("store failure", func(t *testing.T) {
		claim := validClaim()
		claimRepo.EXPECT().
			Create(ctx, claim).
			Return(errors.New("db error"))

		err := svc.SubmitClaim(ctx, claim)
		require.ErrorIs(t, err, service.ErrStoreUnavailable)
	})
}

func TestClaimService_RequestTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claimRepo := mocks.NewMockClaimRepository(ctrl)
	tx := service.TxManagerStub{}

	svc := service.NewClaimService(claimRepo, tx, zap.NewNop())
	ctx := t.Context()
	claimID := uuid.New()

	pendingClaim := func() *models.Claim {
		return &models.Claim{ID: claimID, Status: string(workflow.StatusPending)}
	}

	t.Run("claim not found", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(nil, repository.ErrNotFound)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleApprover, workflow.StatusApproved, "ok")
		require.ErrorIs(t, err, service.ErrNotFound)
		require.Nil(t, claim)
	})

	t.Run("reason required, nothing persisted", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(pendingClaim(), nil)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleApprover, workflow.StatusApproved, "")
		require.ErrorIs(t, err, workflow.ErrReasonRequired)
		require.Nil(t, claim)
	})

	t.Run("unauthorized actor, nothing persisted", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(pendingClaim(), nil)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleFinance, workflow.StatusApproved, "ok")
		require.ErrorIs(t, err, workflow.ErrUnauthorized)
		require.Nil(t, claim)
	})

	t.Run("terminal status rejects", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(&models.Claim{ID: claimID, Status: string(workflow.StatusPaid)}, nil)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleAdmin, workflow.StatusCancelled, "")
		require.ErrorIs(t, err, workflow.ErrInvalidTransition)
		require.Nil(t, claim)
	})

	t.Run("approve success", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(pendingClaim(), nil)
		claimRepo.EXPECT().
			UpdateStatus(ctx, claimID, string(workflow.StatusApproved), "ok").
			Return(nil)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleApprover, workflow.StatusApproved, "ok")
		require.NoError(t, err)
		require.Equal(t, string(workflow.StatusApproved), claim.Status)
		require.Equal(t, "ok", claim.ReasonApprover)
	})

	t.Run("pay success keeps approver reason", func(t *testing.T) {
		approved := &models.Claim{
			ID:             claimID,
			Status:         string(workflow.StatusApproved),
			ReasonApprover: "ok",
		}
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(approved, nil)
		claimRepo.EXPECT().
			UpdateStatus(ctx, claimID, string(workflow.StatusPaid), "ok").
			Return(nil)

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleFinance, workflow.StatusPaid, "")
		require.NoError(t, err)
		require.Equal(t, string(workflow.StatusPaid), claim.Status)
	})

	t.Run("persist failure", func(t *testing.T) {
		claimRepo.EXPECT().
			GetByID(ctx, claimID).
			Return(pendingClaim(), nil)
		claimRepo.EXPECT().
			UpdateStatus(ctx, claimID, string(workflow.StatusApproved), "ok").
			Return(errors.New("db error"))

		claim, err := svc.RequestTransition(ctx, claimID, workflow.RoleApprover, workflow.StatusApproved, "ok")
		require.ErrorIs(t, err, service.ErrStoreUnavailable)
		require.Nil(t, claim)
	})
}

func TestClaimService_ListClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claimRepo := mocks.NewMockClaimRepository(ctrl)
	svc := service.NewClaimService(claimRepo, service.TxManagerStub{}, zap.NewNop())
	ctx := t.Context()

	t.Run("success with filter", func(t *testing.T) {
		status := string(workflow.StatusPending)
		filter := repository.ClaimFilter{Status: &status}
		expected := []*models.Claim{
			{ID: uuid.New(), Status: status},
			{ID: uuid.New(), Status: status},
		}

		claimRepo.EXPECT().
			List(ctx, filter).
			Return(expected, nil)

		claims, err := svc.ListClaims(ctx, filter)
		require.NoError(t, err)
		require.Equal(t, expected, claims)
	})

	t.Run("store failure", func(t *testing.T) {
		claimRepo.EXPECT().
			List(ctx, repository.ClaimFilter{}).
			Return(nil, errors.New("db error"))

		claims, err := svc.ListClaims(ctx, repository.ClaimFilter{})
		require.ErrorIs(t, err, service.ErrStoreUnavailable)
		require.Nil(t, claims)
	})
}
