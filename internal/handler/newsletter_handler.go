package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

type newsletterManager interface {
	List(ctx context.Context, page, limit int, search string) (*service.NewsletterList, error)
	Subscribe(ctx context.Context, email string) (*models.NewsletterEntry, bool, error)
	Unsubscribe(ctx context.Context, id int64) error
}

// NewsletterHandler serves the public signup and the admin subscriber list.
type NewsletterHandler struct {
	newsletter newsletterManager
}

func NewNewsletterHandler(newsletter newsletterManager) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

// List handles GET /api/admin/newsletter?page=&limit=&search=
func (h *NewsletterHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.newsletter.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		utils.Error(c, 500, utils.CodeInternal, "Failed to retrieve subscribers")
		return
	}

	utils.SuccessWithPagination(c, 200, "Subscribers retrieved", list.Entries, list.Pagination)
}

// Subscribe handles POST /api/newsletter
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Invalid request body")
		return
	}

	entry, created, err := h.newsletter.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			utils.Error(c, 400, utils.CodeInvalidRequest, err.Error())
			return
		}
		utils.Error(c, 500, utils.CodeInternal, "Failed to subscribe")
		return
	}

	if !created {
		utils.Success(c, 200, "Already subscribed", entry)
		return
	}
	utils.Success(c, 201, "Subscribed", entry)
}

// Unsubscribe handles DELETE /api/admin/newsletter/:id
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, 400, utils.CodeInvalidID, "Invalid subscriber ID")
		return
	}

	if err := h.newsletter.Unsubscribe(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSubscriberNotFound) {
			utils.Error(c, 404, utils.CodeSubscriberNotFound, err.Error())
			return
		}
		utils.Error(c, 500, utils.CodeInternal, "Failed to unsubscribe")
		return
	}

	utils.Success(c, 200, "Subscriber removed", nil)
}
