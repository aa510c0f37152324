package routes

import (
	"book-inventory-backend/inventory/controllers"

	"github.com/gofiber/fiber/v2"
)

// InventoryRouterInit mounts the CRUD routes on the protected /inventory group.
func InventoryRouterInit(inventoryRoutes fiber.Router, controller *controllers.InventoryController) {
	inventoryRoutes.Get("/", controller.ListInventoryController)
	inventoryRoutes.Post("/", controller.CreateInventoryItemController)
	inventoryRoutes.Get("/:id", controller.GetInventoryItemController)
	inventoryRoutes.Put("/:id", controller.UpdateInventoryItemController)
	inventoryRoutes.Delete("/:id", controller.DeleteInventoryItemController)
}
