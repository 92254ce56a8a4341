// Course material HTTP handlers.
//
//   - POST   /materials      (admin: multipart create)
//   - DELETE /materials/:id  (admin: JSON body with init_data + file_path)
//   - GET    /materials      (authenticated users: paginated listing)
//
// Deletion carries a JSON body on DELETE: the client already holds the blob
// path from the listing, and sending it along saves a row lookup before the
// blob removal.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/services"
)

// CreateMaterial handles POST /materials. The multipart form carries the
// signed init_data, title, optional description, and the file under "file".
// Responds 201 with a confirmation message.
func (h *Handlers) CreateMaterial(c *gin.Context) {
	if !h.requireAdmin(c, c.PostForm("init_data")) {
		return
	}

	file, err := fileFromForm(c, "file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}
	in := services.MaterialInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		File:        file,
	}

	if _, err := h.matSvc.Create(c.Request.Context(), in); err != nil {
		h.serviceFail(c, err, ErrCodeCreateFailed)
		return
	}
	okMessage(c, http.StatusCreated, "Material created")
}

// DeleteMaterialRequest is the JSON payload for material deletion.
type DeleteMaterialRequest struct {
	InitData string `json:"init_data"`
	FilePath string `json:"file_path"`
}

// DeleteMaterial handles DELETE /materials/:id. Responds 200 with a
// confirmation; a missing record yields 404 even when the blob removal
// already happened.
func (h *Handlers) DeleteMaterial(c *gin.Context) {
	var req DeleteMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !h.requireAdmin(c, req.InitData) {
		return
	}

	if err := h.matSvc.Delete(c.Request.Context(), c.Param("id"), req.FilePath); err != nil {
		h.serviceFail(c, err, ErrCodeDeleteFailed)
		return
	}
	okMessage(c, http.StatusOK, "Material deleted")
}

// ListMaterialsResponse wraps a page of course materials.
type ListMaterialsResponse struct {
	Materials  []domain.Material `json:"materials"`
	Pagination Pagination        `json:"pagination"`
}

// ListMaterials handles GET /materials. Any verified Telegram identity may
// browse the listing; the signed payload travels in X-Telegram-Init-Data.
func (h *Handlers) ListMaterials(c *gin.Context) {
	if _, authed := h.authenticate(c, c.GetHeader(initDataHeader)); !authed {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.matSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		h.serviceFail(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListMaterialsResponse{
		Materials:  items,
		Pagination: paginate(page, pageSize, total),
	})
}
