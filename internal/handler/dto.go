package handler

import (
	"time"

	"claims-service/internal/discussion"
	"claims-service/internal/models"
)

const dateLayout = "2006-01-02"

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type submitClaimRequest struct {
	ProjectID string  `json:"project_id"`
	Hours     float64 `json:"hours"`
	DateFrom  string  `json:"date_from"`
	DateTo    string  `json:"date_to"`
	Reason    string  `json:"reason"`
}

type transitionRequest struct {
	TargetStatus string `json:"target_status"`
	Reason       string `json:"reason"`
}

type claimResponse struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	StaffID        string    `json:"staff_id"`
	Status         string    `json:"status"`
	ReasonClaimer  string    `json:"reason_claimer"`
	ReasonApprover string    `json:"reason_approver,omitempty"`
	Hours          float64   `json:"hours"`
	DateFrom       string    `json:"date_from"`
	DateTo         string    `json:"date_to"`
	CreatedAt      time.Time `json:"created_at"`
}

func toClaimResponse(c *models.Claim) claimResponse {
	return claimResponse{
		ID:             c.ID.String(),
		ProjectID:      c.ProjectID.String(),
		StaffID:        c.StaffID.String(),
		Status:         c.Status,
		ReasonClaimer:  c.ReasonClaimer,
		ReasonApprover: c.ReasonApprover,
		Hours:          c.Hours,
		DateFrom:       c.DateFrom.Format(dateLayout),
		DateTo:         c.DateTo.Format(dateLayout),
		CreatedAt:      c.CreatedAt,
	}
}

type projectRequest struct {
	Name     string              `json:"name"`
	DateFrom string              `json:"date_from"`
	DateTo   string              `json:"date_to"`
	Slots    map[string][]string `json:"slots"`
}

type projectResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	DateFrom string              `json:"date_from"`
	DateTo   string              `json:"date_to"`
	Slots    map[string][]string `json:"slots"`
}

func toProjectResponse(p *models.Project) projectResponse {
	resp := projectResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		DateFrom: p.DateFrom.Format(dateLayout),
		DateTo:   p.DateTo.Format(dateLayout),
		Slots:    make(map[string][]string),
	}
	for _, role := range p.Roles {
		resp.Slots[role.Slot] = append(resp.Slots[role.Slot], role.StaffID.String())
	}
	return resp
}

type staffResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RoleLabel string `json:"role_label"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type commentRequest struct {
	Body string `json:"body"`
}

type replyResponse struct {
	ID        string        `json:"id"`
	Author    staffResponse `json:"author"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
}

type commentResponse struct {
	ID        string          `json:"id"`
	Author    staffResponse   `json:"author"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	Replies   []replyResponse `json:"replies"`
}

type scrollResponse struct {
	Newest    bool   `json:"newest,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
}

type threadResponse struct {
	Comments      []commentResponse `json:"comments"`
	Page          int               `json:"page"`
	TotalPages    int               `json:"total_pages"`
	TotalComments int               `json:"total_comments"`
	Phase         string            `json:"phase"`
	ScrollTo      *scrollResponse   `json:"scroll_to,omitempty"`
}

func toStaffResponse(s models.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		RoleLabel: s.RoleLabel,
		AvatarURL: s.AvatarURL,
	}
}

func toThreadResponse(view discussion.View, scroll *discussion.ScrollTarget) threadResponse {
	resp := threadResponse{
		Comments:      make([]commentResponse, 0, len(view.Comments)),
		Page:          view.Page,
		TotalPages:    view.TotalPages,
		TotalComments: view.TotalComments,
		Phase:         string(view.Phase),
	}

	for _, c := range view.Comments {
		cr := commentResponse{
			ID:        c.ID.String(),
			Author:    toStaffResponse(c.Author),
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			Replies:   make([]replyResponse, 0, len(c.Replies)),
		}
		for _, r := range c.Replies {
			cr.Replies = append(cr.Replies, replyResponse{
				ID:        r.ID.String(),
				Author:    toStaffResponse(r.Author),
				Body:      r.Body,
				CreatedAt: r.CreatedAt,
			})
		}
		resp.Comments = append(resp.Comments, cr)
	}

	if scroll != nil {
		sr := &scrollResponse{Newest: scroll.Newest}
		if !scroll.Newest {
			sr.CommentID = scroll.CommentID.String()
		}
		resp.ScrollTo = sr
	}

	return resp
}
