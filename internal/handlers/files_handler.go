package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vinoteca/internal/services"
)

// filesRoutePrefix is the public path under which stored uploads are
// served. Label paths recorded on wines point here.
const filesRoutePrefix = "/api/v1/files/"

// FilesHandler serves stored upload files such as label images.
type FilesHandler struct {
	uploads *services.UploadService
}

func NewFilesHandler(uploads *services.UploadService) *FilesHandler {
	return &FilesHandler{uploads: uploads}
}

func (h *FilesHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/files/:name", h.HandleGetFile)
}

func (h *FilesHandler) HandleGetFile(c *fiber.Ctx) error {
	path, err := h.uploads.FilePath(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendFile(path)
}
