package catalogapi

import (
	"errors"

	"catalog-unifier/core/logger"
	"catalog-unifier/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/products")
	group.Get("/", h.HandleListProducts)
	group.Get("/:code", h.HandleGetProduct)
	group.Get("/:code/variants", h.HandleGetVariants)
}

// HandleListProducts returns a page of the catalog. The page is controlled
// with the limit and offset query parameters.
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := utils.ToInt(c.Query("limit"))
	offset := utils.ToInt(c.Query("offset"))
	products, err := h.service.ListProducts(c.Context(), limit, offset)
	if err != nil {
		l.Error("Product listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"count":    len(products),
		"products": products,
	})
}

// HandleGetProduct returns one product, variants included.
func (h *Handler) HandleGetProduct(c *fiber.Ctx) error {
	code := c.Params("code")
	l := logger.WithRayID(h.service.logger, c)

	product, err := h.service.GetProduct(c.Context(), code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found",
			})
		}
		l.Error("Product lookup failed", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(product)
}

// HandleGetVariants returns the variants of one product.
func (h *Handler) HandleGetVariants(c *fiber.Ctx) error {
	code := c.Params("code")
	l := logger.WithRayID(h.service.logger, c)

	product, err := h.service.GetProduct(c.Context(), code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found",
			})
		}
		l.Error("Variant lookup failed", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"product_code": product.Code,
		"variants":     product.Variants,
	})
}
