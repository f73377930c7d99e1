//go:build integration
// +build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/repository"
	"claims-service/internal/workflow"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestClaimRepository(t *testing.T) {
	ctx := t.Context()
	trManager := manager.Must(trmpgx.NewDefaultFactory(db))

	claimRepo := repository.NewClaimRepository(db, trmpgx.DefaultCtxGetter, retrier)
	projectRepo := repository.NewProjectRepository(db, trmpgx.DefaultCtxGetter, retrier)
	staffRepo := repository.NewStaffRepository(db, trmpgx.DefaultCtxGetter, retrier)

	_ = trManager.Do(ctx, func(ctx context.Context) error {
		project := &models.Project{
			Name:     "Billing revamp",
			DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, projectRepo.Create(ctx, project))

		claimer := &models.Staff{Name: "Alice", RoleLabel: "Developer", IsActive: true}
		require.NoError(t, staffRepo.Create(ctx, claimer))

		claim := &models.Claim{
			ID:            uuid.New(),
			ProjectID:     project.ID,
			StaffID:       claimer.ID,
			Status:        string(workflow.StatusPending),
			ReasonClaimer: "overtime on release",
			Hours:         12,
			DateFrom:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			DateTo:        time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		t.Run("Create", func(t *testing.T) {
			require.NoError(t, claimRepo.Create(ctx, claim))
		})

		t.Run("GetByID", func(t *testing.T) {
			actual, err := claimRepo.GetByID(ctx, claim.ID)
			require.NoError(t, err)
			require.Equal(t, claim.ID, actual.ID)
			require.Equal(t, claim.Status, actual.Status)
			require.Equal(t, claim.ReasonClaimer, actual.ReasonClaimer)
			require.Equal(t, claim.Hours, actual.Hours)
		})

		t.Run("Not found", func(t *testing.T) {
			_, err := claimRepo.GetByID(ctx, uuid.New())
			require.ErrorIs(t, err, repository.ErrNotFound)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			err := claimRepo.UpdateStatus(ctx, claim.ID, string(workflow.StatusApproved), "approved ok")
			require.NoError(t, err)

			actual, err := claimRepo.GetByID(ctx, claim.ID)
			require.NoError(t, err)
			require.Equal(t, string(workflow.StatusApproved), actual.Status)
			require.Equal(t, "approved ok", actual.ReasonApprover)
		})

		t.Run("UpdateStatus of missing claim", func(t *testing.T) {
			err := claimRepo.UpdateStatus(ctx, uuid.New(), string(workflow.StatusApproved), "")
			require.ErrorIs(t, err, repository.ErrNotFound)
		})

		t.Run("List by filter", func(t *testing.T) {
			status := string(workflow.StatusApproved)
			claims, err := claimRepo.List(ctx, repository.ClaimFilter{
				ProjectID: &project.ID,
				Status:    &status,
			})
			require.NoError(t, err)
			require.Len(t, claims, 1)
			require.Equal(t, claim.ID, claims[0].ID)

			other := string(workflow.StatusPaid)
			claims, err = claimRepo.List(ctx, repository.ClaimFilter{Status: &other})
			require.NoError(t, err)
			require.Empty(t, claims)
		})

		return fmt.Errorf("rollback transaction")
	})
}
