// Status HTTP handlers.
//
// This file exposes the two status workflows:
//   - POST  /status                    (self: pause or resume own record)
//   - PATCH /admin/users/:id/status    (admin: approve or reject a registration)
//   - GET   /admin/users               (admin: paginated registration listing)
//
// The self path resolves the target record from the verified identity inside
// the signed payload; the admin path targets a record by its id and requires
// allow-list membership.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/domain"
)

// UpdateStatusRequest is the JSON payload for the self status update.
type UpdateStatusRequest struct {
	InitData string `json:"init_data"`
	Status   string `json:"status"`
}

// UpdateStatus handles POST /status. The caller can only move their own
// record between Active and Paused. Responds 200 with a confirmation.
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, authed := h.authenticate(c, req.InitData)
	if !authed {
		return
	}

	if err := h.statusSvc.UpdateSelf(c.Request.Context(), p.ID, req.Status); err != nil {
		h.serviceFail(c, err, ErrCodeUpdateFailed)
		return
	}
	okMessage(c, http.StatusOK, "Status updated successfully.")
}

// ReviewUserRequest is the JSON payload for the admin status review.
type ReviewUserRequest struct {
	InitData string `json:"init_data"`
	Status   string `json:"status"`
}

// ReviewUser handles PATCH /admin/users/:id/status. Admins move a
// registration to Active or Rejected. Responds 200 with a confirmation.
func (h *Handlers) ReviewUser(c *gin.Context) {
	var req ReviewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !h.requireAdmin(c, req.InitData) {
		return
	}

	if err := h.statusSvc.Review(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		h.serviceFail(c, err, ErrCodeUpdateFailed)
		return
	}
	okMessage(c, http.StatusOK, "User status updated")
}

// ListUsersResponse wraps a page of registrations.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// ListUsers handles GET /admin/users. The signed payload travels in the
// X-Telegram-Init-Data header.
func (h *Handlers) ListUsers(c *gin.Context) {
	if !h.requireAdmin(c, c.GetHeader(initDataHeader)) {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.statusSvc.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		h.serviceFail(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{
		Users:      items,
		Pagination: paginate(page, pageSize, total),
	})
}
