package app

import (
	"fmt"

	"focushub/internal/api/handlers"
	"focushub/internal/material/domain"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// MaterialHandler REST surface of study materials
type MaterialHandler struct {
	Usecase MaterialUseCase
}

// NewMaterialHandler create MaterialHandler
func NewMaterialHandler(uc MaterialUseCase) *MaterialHandler {
	return &MaterialHandler{Usecase: uc}
}

// Upload
// @Summary Upload a study material
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "file"
// @Param title formData string false "defaults to the file name"
// @Param description formData string false "description"
// @Param subject formData string false "subject"
// @Param tags formData string false "JSON array or comma separated"
// @Success 201 {object} domain.Material
// @Router /materials [post]
func (h *MaterialHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return handlers.ErrorResponse(c, fmt.Errorf("%w: no file uploaded", domain.ErrValidation))
	}
	f, err := fh.Open()
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	defer f.Close()

	m, err := h.Usecase.Upload(c.UserContext(), middlewares.MemberID(c), domain.UploadInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Subject:     c.FormValue("subject"),
		Tags:        domain.ParseTags(c.FormValue("tags")),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		File:        f,
	})
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "material": m})
}

// List
// @Summary Materials of the current user
// @Tags Materials
// @Produce json
// @Param q query string false "title, subject or tag contains"
// @Param type query string false "pdf, image, video or document"
// @Param tag query string false "exact tag"
// @Router /materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		q = c.Query("search")
	}
	materials, err := h.Usecase.List(c.UserContext(), middlewares.MemberID(c), domain.Filter{
		Query: q,
		Type:  domain.FileType(c.Query("type")),
		Tag:   c.Query("tag"),
	})
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(materials), "materials": materials})
}

// Stats
// @Summary Storage usage
// @Tags Materials
// @Produce json
// @Success 200 {object} domain.StorageStats
// @Router /materials/stats [get]
func (h *MaterialHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Usecase.Stats(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(stats)
}

// Get
// @Summary One material
// @Tags Materials
// @Param id path string true "material id"
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	m, err := h.Usecase.Get(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "material": m})
}

// Download
// @Summary Presigned download link, ?redirect=true answers 302
// @Tags Materials
// @Param id path string true "material id"
// @Success 200 {object} domain.DownloadLink
// @Router /materials/{id}/download [get]
func (h *MaterialHandler) Download(c *fiber.Ctx) error {
	link, err := h.Usecase.Download(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	if c.QueryBool("redirect") {
		return c.Redirect(link.URL, fiber.StatusFound)
	}
	return c.JSON(link)
}

// Delete
// @Summary Delete a material and its file
// @Tags Materials
// @Param id path string true "material id"
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.Usecase.Delete(c.UserContext(), middlewares.MemberID(c), c.Params("id")); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Deleted successfully"})
}
