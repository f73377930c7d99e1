package handler

import (
	"errors"
	"net/http"
	"strconv"

	"claims-service/internal/discussion"
	"claims-service/internal/repository"
	"claims-service/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
	log               *zap.Logger
}

func NewDiscussionHandler(discussionService *service.DiscussionService, log *zap.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		log:               log,
	}
}

func (h *DiscussionHandler) GetThread(c echo.Context) error {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, "invalid page")
		}
	}

	view, scroll, err := h.discussionService.ThreadView(c.Request().Context(), claimID, page)
	if err != nil {
		return h.storeFailure(c, err)
	}

	return c.JSON(http.StatusOK, toThreadResponse(view, scroll))
}

func (h *DiscussionHandler) PostComment(c echo.Context) error {
	act, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, errorResponse{Error: errorBody{Code: "forbidden", Message: err.Error()}})
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	body := &commentRequest{}
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, "bad request")
	}

	id, err := h.discussionService.SubmitComment(c.Request().Context(), claimID, act.ID, body.Body)
	if err != nil {
		return h.submissionFailure(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"comment_id": id.String()})
}

func (h *DiscussionHandler) PostReply(c echo.Context) error {
	act, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, errorResponse{Error: errorBody{Code: "forbidden", Message: err.Error()}})
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, "invalid comment_id")
	}

	body := &commentRequest{}
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, "bad request")
	}

	id, err := h.discussionService.SubmitReply(c.Request().Context(), claimID, commentID, act.ID, body.Body)
	if err != nil {
		return h.submissionFailure(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"reply_id": id.String()})
}

func (h *DiscussionHandler) submissionFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, discussion.ErrLockedThread):
		return c.JSON(http.StatusConflict, errorResponse{Error: errorBody{
			Code:    "locked_thread",
			Message: "claim is settled, thread is read-only",
		}})
	case errors.Is(err, discussion.ErrEmptyBody):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "empty_body",
			Message: "comment body must not be empty",
		}})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrForeignKeyViolation):
		return c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
			Code:    "not_found",
			Message: "claim or comment not found",
		}})
	default:
		return h.storeFailure(c, err)
	}
}

func (h *DiscussionHandler) storeFailure(c echo.Context, err error) error {
	if errors.Is(err, service.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: errorBody{
			Code:    "store_unavailable",
			Message: "try again later",
		}})
	}
	return c.JSON(http.StatusInternalServerError, "")
}
