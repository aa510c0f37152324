package controllers

import (
	"errors"

	"book-inventory-backend/bleve/repositories"
	indexing "book-inventory-backend/bleve/services"
	"book-inventory-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchController struct {
	BleveRepo repositories.BleveRepositoryInterface
	Logger    *zap.Logger
}

// SearchInventoryController answers GET /search/inventory?q=&status=&condition=&size=
func (sc *SearchController) SearchInventoryController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	result, err := sc.BleveRepo.SearchInventory(repositories.SearchParams{
		TenantID:  user.TenantID.String(),
		Query:     c.Query("q"),
		Status:    c.Query("status"),
		Condition: c.Query("condition"),
		Size:      c.QueryInt("size", repositories.DefaultSearchSize),
	})
	if err != nil {
		sc.Logger.Error("Inventory search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Search failed",
			"error":   "An internal server error occurred.",
		})
	}

	results := make([]fiber.Map, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, fiber.Map{
			"id":     hit.ID,
			"score":  hit.Score,
			"fields": hit.Fields,
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"total":   result.Total,
	})
}

// GetIndexedItemController answers GET /search/inventory/:id with the fields
// the search index holds for one item.
func (sc *SearchController) GetIndexedItemController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	fields, err := sc.BleveRepo.GetItemDocument(user.TenantID.String(), c.Params("id"))
	if errors.Is(err, indexing.ErrDocumentNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not indexed",
		})
	}
	if err != nil {
		sc.Logger.Error("Indexed item lookup failed", zap.String("id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Lookup failed",
			"error":   "An internal server error occurred.",
		})
	}

	return c.JSON(fiber.Map{
		"id":     c.Params("id"),
		"fields": fields,
	})
}
