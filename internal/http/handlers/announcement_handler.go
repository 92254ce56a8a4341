// Announcement HTTP handlers.
//
//   - POST /announcements  (admin: publish)
//   - GET  /announcements  (public: paginated, newest first)
//
// The listing is public because the Mini App shows announcements before the
// user has registered.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/domain"
)

// PostAnnouncementRequest is the JSON payload for publishing an announcement.
type PostAnnouncementRequest struct {
	InitData string `json:"init_data"`
	Content  string `json:"content"`
}

// PostAnnouncement handles POST /announcements. Responds 201 with a
// confirmation message.
func (h *Handlers) PostAnnouncement(c *gin.Context) {
	var req PostAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !h.requireAdmin(c, req.InitData) {
		return
	}

	if _, err := h.annSvc.Post(c.Request.Context(), req.Content); err != nil {
		h.serviceFail(c, err, ErrCodeCreateFailed)
		return
	}
	okMessage(c, http.StatusCreated, "Announcement sent!")
}

// ListAnnouncementsResponse wraps a page of announcements.
type ListAnnouncementsResponse struct {
	Announcements []domain.Announcement `json:"announcements"`
	Pagination    Pagination            `json:"pagination"`
}

// ListAnnouncements handles GET /announcements.
func (h *Handlers) ListAnnouncements(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.annSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		h.serviceFail(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListAnnouncementsResponse{
		Announcements: items,
		Pagination:    paginate(page, pageSize, total),
	})
}
