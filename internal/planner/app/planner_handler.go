package app

import (
	"fmt"

	"focushub/internal/api/handlers"
	"focushub/internal/planner/domain"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// PlannerHandler REST surface of tasks, pomodoro and analytics
type PlannerHandler struct {
	tasks     TaskUseCase
	pomodoro  PomodoroUseCase
	analytics AnalyticsUseCase
}

// NewPlannerHandler create PlannerHandler
func NewPlannerHandler(tasks TaskUseCase, pomodoro PomodoroUseCase, analytics AnalyticsUseCase) *PlannerHandler {
	return &PlannerHandler{tasks: tasks, pomodoro: pomodoro, analytics: analytics}
}

func email(c *fiber.Ctx) string {
	e, _ := c.Locals(middlewares.TokenEmail).(string)
	return e
}

// ListTasks
// @Summary Tasks of the current user
// @Tags Tasks
// @Produce json
// @Router /tasks [get]
func (h *PlannerHandler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

// CreateTask
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body domain.CreateTaskInput true "task"
// @Success 201 {object} domain.Task
// @Router /tasks [post]
func (h *PlannerHandler) CreateTask(c *fiber.Ctx) error {
	var in domain.CreateTaskInput
	if err := handlers.BindJSON(c, &in); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	task, err := h.tasks.Create(c.UserContext(), middlewares.MemberID(c), email(c), in)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Task created", "task": task})
}

// UpdateTask
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "task id"
// @Param body body domain.UpdateTaskInput true "fields to change"
// @Router /tasks/{id} [put]
func (h *PlannerHandler) UpdateTask(c *fiber.Ctx) error {
	var in domain.UpdateTaskInput
	if err := handlers.BindJSON(c, &in); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	task, err := h.tasks.Update(c.UserContext(), middlewares.MemberID(c), c.Params("id"), in)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task updated", "task": task})
}

// DeleteTask
// @Summary Delete a task
// @Tags Tasks
// @Param id path string true "task id"
// @Router /tasks/{id} [delete]
func (h *PlannerHandler) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), middlewares.MemberID(c), c.Params("id")); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// ToggleTask
// @Summary Flip completion
// @Tags Tasks
// @Param id path string true "task id"
// @Router /tasks/{id}/toggle [patch]
func (h *PlannerHandler) ToggleTask(c *fiber.Ctx) error {
	task, err := h.tasks.Toggle(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task toggled", "task": task})
}

// ToggleAlert
// @Summary Flip the overdue alert flag
// @Tags Tasks
// @Param id path string true "task id"
// @Router /tasks/{id}/toggle-alert [patch]
func (h *PlannerHandler) ToggleAlert(c *fiber.Ctx) error {
	task, err := h.tasks.ToggleAlert(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alert toggled", "task": task})
}

// SaveSession
// @Summary Record a finished pomodoro
// @Tags Pomodoro
// @Accept json
// @Produce json
// @Param body body domain.PomodoroInput true "session"
// @Success 201 {object} domain.PomodoroSession
// @Router /pomodoro [post]
func (h *PlannerHandler) SaveSession(c *fiber.Ctx) error {
	var in domain.PomodoroInput
	if err := handlers.BindJSON(c, &in); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	s, err := h.pomodoro.Save(c.UserContext(), middlewares.MemberID(c), in)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Session saved", "session": s})
}

// ListSessions
// @Summary Pomodoro history
// @Tags Pomodoro
// @Produce json
// @Param startDate query string false "YYYY-MM-DD or RFC3339"
// @Param endDate query string false "YYYY-MM-DD or RFC3339"
// @Param type query string false "focus or break"
// @Router /pomodoro [get]
func (h *PlannerHandler) ListSessions(c *fiber.Ctx) error {
	var f domain.SessionFilter
	var err error
	if f.From, err = domain.ParseDueDate(c.Query("startDate")); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	if f.To, err = domain.ParseDueDate(c.Query("endDate")); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	switch t := domain.SessionType(c.Query("type")); t {
	case "", domain.SessionFocus, domain.SessionBreak:
		f.Type = t
	default:
		return handlers.ErrorResponse(c, fmt.Errorf("%w: type must be focus or break", domain.ErrValidation))
	}

	sessions, err := h.pomodoro.List(c.UserContext(), middlewares.MemberID(c), f)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

// SessionStats
// @Summary Focus totals
// @Tags Pomodoro
// @Produce json
// @Success 200 {object} domain.PomodoroStats
// @Router /pomodoro/stats [get]
func (h *PlannerHandler) SessionStats(c *fiber.Ctx) error {
	stats, err := h.pomodoro.Stats(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(stats)
}

// Summary
// @Summary Task and focus summary
// @Tags Analytics
// @Produce json
// @Success 200 {object} domain.Summary
// @Router /analytics/summary [get]
func (h *PlannerHandler) Summary(c *fiber.Ctx) error {
	s, err := h.analytics.Summary(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(s)
}

// FocusTime
// @Summary Daily focus time
// @Tags Analytics
// @Produce json
// @Param days query int false "window in days, default 30"
// @Router /analytics/focus-time [get]
func (h *PlannerHandler) FocusTime(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	data, err := h.analytics.FocusTime(c.UserContext(), middlewares.MemberID(c), days)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}

	seconds := 0
	sessions := 0
	for _, d := range data {
		seconds += d.Seconds
		sessions += d.Sessions
	}
	return c.JSON(fiber.Map{
		"data":          data,
		"totalMinutes":  seconds / 60,
		"totalSessions": sessions,
	})
}
