package handler

import (
	"errors"
	"net/http"
	"time"

	"claims-service/internal/assignment"
	"claims-service/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	log            *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		log:            log,
	}
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	p, err := h.projectService.GetProject(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    "not_found",
				Message: "project not found",
			}})
		}
		return h.storeFailure(c, err)
	}

	return c.JSON(http.StatusOK, toProjectResponse(p))
}

func (h *ProjectHandler) ListStaff(c echo.Context) error {
	staff, err := h.projectService.ListStaff(c.Request().Context())
	if err != nil {
		return h.storeFailure(c, err)
	}

	resp := make([]staffResponse, 0, len(staff))
	for _, s := range staff {
		resp = append(resp, toStaffResponse(*s))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) PostProject(c echo.Context) error {
	return h.saveDraft(c, uuid.Nil)
}

func (h *ProjectHandler) PutProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}
	return h.saveDraft(c, id)
}

// saveDraft rebuilds a draft from the request by replaying each slot member
// through ToggleAssignment, so the exclusivity invariant is enforced on the
// way in, then validates and persists.
func (h *ProjectHandler) saveDraft(c echo.Context, projectID uuid.UUID) error {
	body := &projectRequest{}
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, "bad request")
	}

	dateFrom, errFrom := time.Parse(dateLayout, body.DateFrom)
	dateTo, errTo := time.Parse(dateLayout, body.DateTo)
	if errFrom != nil || errTo != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "validation_failed",
			Message: "dates must use YYYY-MM-DD",
		}})
	}

	draft := assignment.NewDraft()
	draft.ID = projectID
	draft.Name = body.Name
	draft.DateFrom = dateFrom
	draft.DateTo = dateTo

	for slot, staffIDs := range body.Slots {
		if !assignment.ValidSlot(assignment.Slot(slot)) {
			return c.JSON(http.StatusBadRequest, "unknown slot "+slot)
		}
		for _, raw := range staffIDs {
			staffID, err := uuid.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, "invalid staff id in slot "+slot)
			}
			draft, err = assignment.ToggleAssignment(draft, assignment.Slot(slot), staffID)
			if err != nil {
				return c.JSON(http.StatusConflict, errorResponse{Error: errorBody{
					Code:    "already_assigned",
					Message: "staff " + staffID.String() + " already holds another role on this project",
					Fields:  map[string]string{slot: "staff already assigned elsewhere"},
				}})
			}
		}
	}

	p, err := h.projectService.SaveDraft(c.Request().Context(), draft)
	if err != nil {
		var fieldErrs service.ValidationError
		switch {
		case errors.As(err, &fieldErrs):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
				Code:    "validation_failed",
				Message: "project draft is not valid",
				Fields:  fieldErrs,
			}})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    "not_found",
				Message: "project not found",
			}})
		default:
			return h.storeFailure(c, err)
		}
	}

	status := http.StatusCreated
	if projectID != uuid.Nil {
		status = http.StatusOK
	}
	return c.JSON(status, toProjectResponse(p))
}

func (h *ProjectHandler) storeFailure(c echo.Context, err error) error {
	if errors.Is(err, service.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: errorBody{
			Code:    "store_unavailable",
			Message: "try again later",
		}})
	}
	return c.JSON(http.StatusInternalServerError, "")
}
