package app

import (
	"strings"

	"focushub/internal/api/handlers"
	"focushub/internal/planner/domain"
	"focushub/pkg/logger"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CalendarHandler REST surface of the calendar link
type CalendarHandler struct {
	calendar    CalendarUseCase
	frontendURL string
}

// NewCalendarHandler the callback redirects to frontendURL/tasks
func NewCalendarHandler(calendar CalendarUseCase, frontendURL string) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Connect
// @Summary Google consent URL for the current user
// @Tags Calendar
// @Produce json
// @Router /calendar/google [get]
func (h *CalendarHandler) Connect(c *fiber.Ctx) error {
	authURL, err := h.calendar.Connect(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"authUrl": authURL})
}

// Callback
// @Summary OAuth redirect target, not JWT protected
// @Tags Calendar
// @Param code query string true "authorization code"
// @Param state query string true "state from the consent URL"
// @Success 302
// @Router /calendar/google/callback [get]
func (h *CalendarHandler) Callback(c *fiber.Ctx) error {
	result := domain.CalendarSyncSuccess
	if userID, err := h.calendar.Callback(c.UserContext(), c.Query("code"), c.Query("state")); err != nil {
		logger.Log.Warn("calendar callback failed", zap.String("user_id", userID), zap.Error(err))
		result = domain.CalendarSyncError
	}
	return c.Redirect(h.frontendURL+"/tasks?sync="+string(result), fiber.StatusFound)
}

// Status
// @Summary Whether the current user has a usable calendar link
// @Tags Calendar
// @Produce json
// @Success 200 {object} domain.CalendarStatus
// @Router /calendar/status [get]
func (h *CalendarHandler) Status(c *fiber.Ctx) error {
	status, err := h.calendar.Status(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(status)
}

// Disconnect
// @Summary Revoke and forget the calendar link
// @Tags Calendar
// @Produce json
// @Router /calendar/disconnect [post]
func (h *CalendarHandler) Disconnect(c *fiber.Ctx) error {
	msg, err := h.calendar.Disconnect(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}
