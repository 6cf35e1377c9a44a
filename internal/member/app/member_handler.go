package app

import (
	"focushub/internal/api/handlers"
	"focushub/pkg/logger"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SignupRequest body of POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MemberHandler REST surface of the member service
type MemberHandler struct {
	Usecase MemberUseCase
}

// NewMemberHandler create MemberHandler
func NewMemberHandler(usecase MemberUseCase) *MemberHandler {
	return &MemberHandler{Usecase: usecase}
}

// Signup
// @Summary Register a member
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SignupRequest true "signup"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/signup [post]
func (h *MemberHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return handlers.ErrorResponse(c, err)
	}

	t, err := h.Usecase.Signup(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		logger.Log.Debug("Signup Err", zap.String("email", req.Email), zap.Error(err))
		return handlers.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Signup successful", "token": t})
}

// Login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} LoginResult
// @Failure 400 {object} map[string]string
// @Router /auth/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return handlers.ErrorResponse(c, err)
	}

	res, err := h.Usecase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    res.Token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Login successful", "token": res.Token, "user": res.User})
}

// Logout
// @Summary Log out
// @Tags Auth
// @Produce json
// @Router /auth/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	if err := h.Usecase.Logout(c.UserContext(), middlewares.MemberID(c)); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me
// @Summary Current member profile
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.Profile
// @Router /auth/me [get]
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	p, err := h.Usecase.Me(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(p)
}

// Students
// @Summary All members
// @Tags Auth
// @Produce json
// @Success 200 {array} domain.Profile
// @Router /auth/students [get]
func (h *MemberHandler) Students(c *fiber.Ctx) error {
	list, err := h.Usecase.Students(c.UserContext())
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(list)
}

// Session
// @Summary Session expiry check
// @Tags Auth
// @Produce json
// @Router /auth/session [get]
func (h *MemberHandler) Session(c *fiber.Ctx) error {
	expired, err := h.Usecase.CheckSessionTimeout(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"expired": expired})
}

// RefreshSession
// @Summary Extend a live session
// @Tags Auth
// @Produce json
// @Router /auth/session/refresh [post]
func (h *MemberHandler) RefreshSession(c *fiber.Ctx) error {
	if err := h.Usecase.ReconnectSession(c.UserContext(), middlewares.MemberID(c)); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"expired": false})
}
