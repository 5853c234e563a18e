package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/app"
	"pypln-web/internal/model"
	"pypln-web/internal/transport/http/middleware"
	"pypln-web/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=64"`
	Password string `json:"password" form:"password" binding:"required,max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func userJSON(user *model.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
		default:
			writeError(c, err, "register failed")
		}
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) {
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
			return
		}
		writeError(c, err, "login failed")
		return
	}

	response.OK(c, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.OK(c, userJSON(user))
}

// currentUser loads the authenticated account, answering 401 itself when
// the token no longer maps to a user.
func (h *AuthHandler) currentUser(c *gin.Context) (*model.User, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return nil, false
	}
	user, err := h.authService.GetUserByID(userID)
	if errors.Is(err, app.ErrUnknownUser) {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
		return nil, false
	}
	if err != nil {
		writeError(c, err, "fetch current user failed")
		return nil, false
	}
	return user, true
}

// APIRoot lists the top level collections.
func APIRoot(c *gin.Context) {
	response.OK(c, gin.H{
		"corpora":   apiURL(c, "/corpora/"),
		"documents": apiURL(c, "/documents/"),
	})
}
