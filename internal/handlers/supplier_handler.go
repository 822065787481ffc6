package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vinoteca/internal/middleware"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"
)

// SupplierHandler handles HTTP requests for suppliers.
type SupplierHandler struct {
	service  *services.SupplierService
	registry *schema.Registry
}

func NewSupplierHandler(service *services.SupplierService, registry *schema.Registry) *SupplierHandler {
	return &SupplierHandler{service: service, registry: registry}
}

func (h *SupplierHandler) RegisterRoutes(router fiber.Router) {
	suppliers := router.Group("/suppliers")

	suppliers.Get("/", h.HandleListSuppliers)
	suppliers.Post("/", middleware.ValidateBody[models.Supplier](h.registry), h.HandleCreateSupplier)
	suppliers.Get("/:id", h.HandleGetSupplier)
	suppliers.Patch("/:id", middleware.ValidateBody[models.SupplierPatch](h.registry), h.HandlePatchSupplier)
	suppliers.Delete("/:id", h.HandleDeleteSupplier)
}

func (h *SupplierHandler) HandleListSuppliers(c *fiber.Ctx) error {
	params := repositories.SupplierListParams{
		Query: c.Query("q"),
		Page:  c.QueryInt("page"),
		Limit: c.QueryInt("limit"),
		Sort:  c.Query("sort"),
	}
	if params.Sort != "" {
		if _, _, ok := h.registry.SortColumn(models.Supplier{}, params.Sort); !ok {
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
		"data": result.Suppliers,
		"meta": newMeta(result.Page, result.Limit, result.Total),
	})
}

func (h *SupplierHandler) HandleCreateSupplier(c *fiber.Ctx) error {
	supplier := middleware.BodyFromCtx[models.Supplier](c)

	created, err := h.service.Create(c.UserContext(), supplier)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *SupplierHandler) HandleGetSupplier(c *fiber.Ctx) error {
	supplier, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

func (h *SupplierHandler) HandlePatchSupplier(c *fiber.Ctx) error {
	patch := middleware.BodyFromCtx[models.SupplierPatch](c)

	supplier, err := h.service.Patch(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

func (h *SupplierHandler) HandleDeleteSupplier(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
