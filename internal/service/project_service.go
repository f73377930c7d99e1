//go:generate mockgen -source=project_service.go -destination=../mocks/project_service.go -package=mocks .

package service

import (
	"context"

	"claims-service/internal/assignment"
	"claims-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectRepository interface {
	// Создать проект
	Create(ctx context.Context, p *models.Project) error

	// Обновить проект
	Update(ctx context.Context, p *models.Project) error

	// Получить проект с ролями по ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// Полностью заменить роли проекта
	ReplaceRoles(ctx context.Context, projectID uuid.UUID, roles []*models.ProjectRole) error
}

type StaffRepository interface {
	// Получить сотрудника по ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)

	// Получить активных сотрудников
	List(ctx context.Context) ([]*models.Staff, error)
}

type ProjectService struct {
	projectRepo ProjectRepository
	staffRepo   StaffRepository

	trManager TxManager

	log *zap.Logger
}

func NewProjectService(projectRepo ProjectRepository, staffRepo StaffRepository, trManager TxManager, log *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		staffRepo:   staffRepo,
		trManager:   trManager,
		log:         log,
	}
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("failed to get project",
			zap.Error(err),
			zap.String("project_id", id.String()),
		)
		return nil, storeErr(err)
	}
	return p, nil
}

// DraftFor rebuilds an editable draft from a persisted project.
func (s *ProjectService) DraftFor(ctx context.Context, id uuid.UUID) (assignment.Draft, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return assignment.Draft{}, err
	}

	slots := make(map[assignment.Slot][]uuid.UUID)
	for _, role := range p.Roles {
		slot := assignment.Slot(role.Slot)
		slots[slot] = append(slots[slot], role.StaffID)
	}

	return assignment.DraftFromAssignments(p.ID, p.Name, p.DateFrom, p.DateTo, slots), nil
}

func (s *ProjectService) ListStaff(ctx context.Context) ([]*models.Staff, error) {
	staff, err := s.staffRepo.List(ctx)
	if err != nil {
		s.log.Error("failed to list staff", zap.Error(err))
		return nil, storeErr(err)
	}
	return staff, nil
}

// SaveDraft validates and persists a project draft: the project row and its
// full role-slot table change in one transaction. Validation failures return
// the field map and write nothing.
func (s *ProjectService) SaveDraft(ctx context.Context, draft assignment.Draft) (*models.Project, error) {
	if errs := assignment.ValidateDraftForSubmit(draft); len(errs) > 0 {
		s.log.Warn("project draft rejected by validation",
			zap.Int("field_errors", len(errs)),
		)
		return nil, ValidationError(errs)
	}

	p := &models.Project{
		ID:       draft.ID,
		Name:     draft.Name,
		DateFrom: draft.DateFrom,
		DateTo:   draft.DateTo,
	}

	txErr := s.trManager.Do(ctx, func(ctx context.Context) error {
		if p.ID == uuid.Nil {
			if err := s.projectRepo.Create(ctx, p); err != nil {
				s.log.Error("failed to create project", zap.Error(err))
				return storeErr(err)
			}
		} else {
			if err := s.projectRepo.Update(ctx, p); err != nil {
				s.log.Error("failed to update project",
					zap.Error(err),
					zap.String("project_id", p.ID.String()),
				)
				return storeErr(err)
			}
		}

		for slot, staffIDs := range draft.Assignments() {
			for _, staffID := range staffIDs {
				p.Roles = append(p.Roles, &models.ProjectRole{
					ProjectID: p.ID,
					StaffID:   staffID,
					Slot:      string(slot),
				})
			}
		}

		if err := s.projectRepo.ReplaceRoles(ctx, p.ID, p.Roles); err != nil {
			s.log.Error("failed to replace project roles",
				zap.Error(err),
				zap.String("project_id", p.ID.String()),
			)
			return storeErr(err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("project draft saved",
		zap.String("project_id", p.ID.String()),
		zap.Int("roles", len(p.Roles)),
	)

	return p, nil
}
