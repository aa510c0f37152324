package controllers

import (
	"errors"

	"book-inventory-backend/inventory/repositories"
	"book-inventory-backend/inventory/services"
	"book-inventory-backend/middleware"
	"book-inventory-backend/utils/pagination"
	"book-inventory-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryController struct {
	Service *services.InventoryService
	Events  *websocket.Hub
	Logger  *zap.Logger
}

// writeError maps service and repository errors onto HTTP answers.
func (ic *InventoryController) writeError(c *fiber.Ctx, action string, err error) error {
	var inputErr *services.InputError
	switch {
	case errors.As(err, &inputErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   inputErr.Problems,
		})
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Duplicate SKU",
			"error":   "An item with this SKU already exists for this store.",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	case errors.Is(err, repositories.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	ic.Logger.Error("Inventory request failed", zap.String("action", action), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Failed to " + action,
		"error":   "An internal server error occurred.",
	})
}

func invalidItemID(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid item id",
		"error":   err.Error(),
	})
}

func (ic *InventoryController) ListInventoryController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid pagination parameters",
			"error":   err.Error(),
		})
	}

	result, err := ic.Service.List(c.UserContext(), user.TenantID, repositories.ListParams{
		Page:     params.Page,
		PageSize: params.PageSize,
		Search:   params.Filters["search"],
		Status:   params.Filters["status"],
	})
	if err != nil {
		return ic.writeError(c, "list inventory", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, result.Items, result.Total, params))
}

func (ic *InventoryController) GetInventoryItemController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidItemID(c, err)
	}

	item, err := ic.Service.Get(c.UserContext(), user.TenantID, id)
	if err != nil {
		return ic.writeError(c, "fetch item", err)
	}
	return c.JSON(fiber.Map{"data": item})
}

func (ic *InventoryController) CreateInventoryItemController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	var input services.ItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"error":   err.Error(),
		})
	}

	item, err := ic.Service.Create(c.UserContext(), user.TenantID, user.UserID, &input)
	if err != nil {
		return ic.writeError(c, "create item", err)
	}
	ic.Events.NotifyTenant(user.TenantID, websocket.MessageTypeItemCreated, fiber.Map{"id": item.ID, "sku": item.SKU})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item created successfully",
		"data":    item,
	})
}

func (ic *InventoryController) UpdateInventoryItemController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidItemID(c, err)
	}

	var input services.ItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"error":   err.Error(),
		})
	}

	item, err := ic.Service.Update(c.UserContext(), user.TenantID, user.UserID, id, &input)
	if err != nil {
		return ic.writeError(c, "update item", err)
	}
	ic.Events.NotifyTenant(user.TenantID, websocket.MessageTypeItemUpdated, fiber.Map{"id": item.ID, "sku": item.SKU})

	return c.JSON(fiber.Map{
		"message": "Item updated successfully",
		"data":    item,
	})
}

func (ic *InventoryController) DeleteInventoryItemController(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidItemID(c, err)
	}

	if err := ic.Service.Delete(c.UserContext(), user.TenantID, id); err != nil {
		return ic.writeError(c, "delete item", err)
	}
	ic.Events.NotifyTenant(user.TenantID, websocket.MessageTypeItemDeleted, fiber.Map{"id": id})

	return c.JSON(fiber.Map{"message": "Item deleted successfully"})
}
