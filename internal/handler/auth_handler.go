package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

type adminAuthenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	authService adminAuthenticator
}

func NewAuthHandler(authService adminAuthenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Invalid request body")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountInactive) {
			utils.Error(c, 401, utils.CodeInvalidCredentials, err.Error())
			return
		}
		utils.Error(c, 500, utils.CodeInternal, "Login failed")
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
	})
}
