package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vinoteca/internal/middleware"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"
)

// WineHandler handles HTTP requests for the wine catalog.
type WineHandler struct {
	service  *services.WineService
	importer *services.ImportService
	uploads  *services.UploadService
	registry *schema.Registry
}

func NewWineHandler(service *services.WineService, importer *services.ImportService, uploads *services.UploadService, registry *schema.Registry) *WineHandler {
	return &WineHandler{
		service:  service,
		importer: importer,
		uploads:  uploads,
		registry: registry,
	}
}

// RegisterRoutes registers the wine routes on the given router. The import
// route is registered before the parameterized ones so "import" is never
// matched as a wine id.
func (h *WineHandler) RegisterRoutes(router fiber.Router) {
	wines := router.Group("/wines")

	wines.Get("/", h.HandleListWines)
	wines.Post("/", middleware.ValidateBody[models.Wine](h.registry), h.HandleCreateWine)
	wines.Post("/import", h.HandleImportWines)
	wines.Get("/:id", h.HandleGetWine)
	wines.Patch("/:id", middleware.ValidateBody[models.WinePatch](h.registry), h.HandlePatchWine)
	wines.Delete("/:id", h.HandleDeleteWine)
	wines.Post("/:id/label", h.HandleUploadLabel)
}

func (h *WineHandler) HandleListWines(c *fiber.Ctx) error {
	params := repositories.WineListParams{
		Query:      c.Query("q"),
		Style:      c.Query("style"),
		Country:    c.Query("country"),
		SupplierID: c.Query("supplier_id"),
		VintageMin: c.QueryInt("vintage_min"),
		VintageMax: c.QueryInt("vintage_max"),
		InStock:    c.QueryBool("in_stock"),
		Page:       c.QueryInt("page"),
		Limit:      c.QueryInt("limit"),
		Sort:       c.Query("sort"),
	}
	if params.Sort != "" {
		if _, _, ok := h.registry.SortColumn(models.Wine{}, params.Sort); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unsupported sort field",
			})
		}
	}

	result, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data": result.Wines,
		"meta": newMeta(result.Page, result.Limit, result.Total),
	})
}

func (h *WineHandler) HandleCreateWine(c *fiber.Ctx) error {
	wine := middleware.BodyFromCtx[models.Wine](c)
	// The label path is only ever set through the upload endpoint.
	wine.LabelPath = ""

	created, err := h.service.Create(c.UserContext(), wine)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *WineHandler) HandleGetWine(c *fiber.Ctx) error {
	wine, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(wine)
}

func (h *WineHandler) HandlePatchWine(c *fiber.Ctx) error {
	patch := middleware.BodyFromCtx[models.WinePatch](c)

	wine, err := h.service.Patch(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(wine)
}

func (h *WineHandler) HandleDeleteWine(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleImportWines ingests a spreadsheet and creates one wine per valid
// row. Rows that fail validation are reported back instead of aborting
// the whole import.
func (h *WineHandler) HandleImportWines(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "multipart field 'file' is required",
		})
	}
	src, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	report, err := h.importer.ImportWines(c.UserContext(), fh.Filename, src)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// HandleUploadLabel stores a label image for a wine and records its
// serving path on the record.
func (h *WineHandler) HandleUploadLabel(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.service.Get(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "multipart field 'file' is required",
		})
	}

	name, err := h.uploads.SaveImage(fh)
	if err != nil {
		return respondError(c, err)
	}

	wine, err := h.service.SetLabel(c.UserContext(), id, filesRoutePrefix+name)
	if err != nil {
		h.uploads.Remove(name)
		return respondError(c, err)
	}
	return c.JSON(wine)
}
