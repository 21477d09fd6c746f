package handlers

import (
	"errors"
	"net/http"

	"maint-logbook/internal/middleware"
	"maint-logbook/internal/models"
	"maint-logbook/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users  *service.UserService
	tokens *middleware.TokenIssuer
}

func NewAuthHandler(users *service.UserService, tokens *middleware.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func startSession(c *gin.Context, user *models.User) error {
	sess := sessions.Default(c)
	sess.Set(middleware.KeyUserID, user.ID)
	sess.Set(middleware.KeyRole, string(user.Role))
	return sess.Save()
}

func endSession(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
}

// HTML-формы

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"error": ""})
}

type registerForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	FullName string `form:"full_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "register.html", gin.H{"error": "invalid form data"})
		return
	}

	_, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
	if errors.Is(err, service.ErrInvalidInput) {
		render(c, http.StatusBadRequest, "register.html", gin.H{"error": err.Error(), "email": form.Email, "fullName": form.FullName})
		return
	}
	if err != nil {
		render(c, http.StatusInternalServerError, "register.html", gin.H{"error": "failed to register user"})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"error": ""})
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "invalid form data"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		status := http.StatusBadRequest
		msg := err.Error()
		if !errors.Is(err, service.ErrUnauthenticated) {
			status, msg = http.StatusInternalServerError, "login failed"
		}
		render(c, status, "login.html", gin.H{"error": msg, "email": form.Email})
		return
	}
	if err := startSession(c, user); err != nil {
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": "login failed"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	endSession(c)
	c.Redirect(http.StatusFound, "/login")
}

// JSON API

func (h *AuthHandler) APIRegister(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err, "failed to register user")
		return
	}
	c.JSON(http.StatusOK, user)
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// APILogin opens a cookie session and also returns a bearer token.
func (h *AuthHandler) APILogin(c *gin.Context) {
	var in loginForm
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(c, err, "login failed")
		return
	}
	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondErr(c, err, "login failed")
		return
	}
	if err := startSession(c, user); err != nil {
		respondErr(c, err, "login failed")
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) APILogout(c *gin.Context) {
	endSession(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErr(c, err, "failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
