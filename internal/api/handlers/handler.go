package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	errprocess "focushub/pkg/err"
	"focushub/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// ConnectCheck check service start
// @Summary Check service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "<service> start!"
// @Router / [get]
func ConnectCheck(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(service + " start!")
	}
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for this service
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statusStr := c.Query("status")
		logger.Log.Info("debug", zap.String("status", statusStr))

		status, err := strconv.ParseBool(statusStr)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}

		logger.Log.SetDebugMode(status)
		return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
	}
}

// ErrorResponse writes {"error": msg} with the status matching err
func ErrorResponse(c *fiber.Ctx, err error) error {
	code := errprocess.StatusCode(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// BindJSON parses the body into v and runs its validate tags
func BindJSON(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: invalid request body", errprocess.ErrValidation)
	}
	return Validate(v)
}

// Validate runs validate tags on v
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errprocess.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", errprocess.ErrValidation, err)
	}
	return nil
}
