package handler

import (
	"errors"
	"net/http"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/repository"
	"claims-service/internal/service"
	"claims-service/internal/workflow"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ClaimHandler struct {
	claimService *service.ClaimService
	log          *zap.Logger
}

func NewClaimHandler(claimService *service.ClaimService, log *zap.Logger) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		log:          log,
	}
}

func (h *ClaimHandler) PostClaim(c echo.Context) error {
	act, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, errorResponse{Error: errorBody{Code: "forbidden", Message: err.Error()}})
	}

	body := &submitClaimRequest{}
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, "bad request")
	}

	projectID, err := uuid.Parse(body.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid project_id")
	}

	dateFrom, errFrom := time.Parse(dateLayout, body.DateFrom)
	dateTo, errTo := time.Parse(dateLayout, body.DateTo)
	if errFrom != nil || errTo != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "validation_failed",
			Message: "dates must use YYYY-MM-DD",
		}})
	}

	claim := &models.Claim{
		ProjectID:     projectID,
		StaffID:       act.ID,
		Hours:         body.Hours,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		ReasonClaimer: body.Reason,
	}

	if err := h.claimService.SubmitClaim(c.Request().Context(), claim); err != nil {
		var fieldErrs service.ValidationError
		switch {
		case errors.As(err, &fieldErrs):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
				Code:    "validation_failed",
				Message: "claim is not valid",
				Fields:  fieldErrs,
			}})
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    "not_found",
				Message: "project or staff not found",
			}})
		case errors.Is(err, service.ErrStoreUnavailable):
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: errorBody{
				Code:    "store_unavailable",
				Message: "try again later",
			}})
		default:
			return c.JSON(http.StatusInternalServerError, "")
		}
	}

	return c.JSON(http.StatusCreated, toClaimResponse(claim))
}

func (h *ClaimHandler) GetClaim(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	claim, err := h.claimService.GetClaim(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    "not_found",
				Message: "claim not found",
			}})
		}
		return h.storeFailure(c, err)
	}

	return c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) ListClaims(c echo.Context) error {
	filter := repository.ClaimFilter{}

	if v := c.QueryParam("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, "invalid project_id")
		}
		filter.ProjectID = &id
	}
	if v := c.QueryParam("staff_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, "invalid staff_id")
		}
		filter.StaffID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		filter.Status = &v
	}

	claims, err := h.claimService.ListClaims(c.Request().Context(), filter)
	if err != nil {
		return h.storeFailure(c, err)
	}

	resp := make([]claimResponse, 0, len(claims))
	for _, claim := range claims {
		resp = append(resp, toClaimResponse(claim))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ClaimHandler) PostTransition(c echo.Context) error {
	act, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, errorResponse{Error: errorBody{Code: "forbidden", Message: err.Error()}})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	body := &transitionRequest{}
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, "bad request")
	}

	claim, err := h.claimService.RequestTransition(
		c.Request().Context(),
		id,
		act.Role,
		workflow.Status(body.TargetStatus),
		body.Reason,
	)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, errorResponse{Error: errorBody{
				Code:    "invalid_transition",
				Message: "transition not allowed from current status",
			}})
		case errors.Is(err, workflow.ErrUnauthorized):
			return c.JSON(http.StatusForbidden, errorResponse{Error: errorBody{
				Code:    "unauthorized",
				Message: "actor role not permitted for transition",
			}})
		case errors.Is(err, workflow.ErrReasonRequired):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
				Code:    "reason_required",
				Message: "transition requires a non-empty reason",
			}})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    "not_found",
				Message: "claim not found",
			}})
		default:
			return h.storeFailure(c, err)
		}
	}

	return c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) storeFailure(c echo.Context, err error) error {
	if errors.Is(err, service.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: errorBody{
			Code:    "store_unavailable",
			Message: "try again later",
		}})
	}
	return c.JSON(http.StatusInternalServerError, "")
}
