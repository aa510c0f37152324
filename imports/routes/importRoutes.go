package routes

import (
	"book-inventory-backend/imports/controllers"
	"book-inventory-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

// ImportRouterInit mounts the import routes on the protected /inventory group.
// Uploads are rate limited per tenant; the template is not.
func ImportRouterInit(inventoryRoutes fiber.Router, controller *controllers.ImportController, limiter *middleware.TenantRateLimiter) {
	inventoryRoutes.Post("/import", limiter.Handler(), controller.ImportInventoryController)
	inventoryRoutes.Get("/import/template", controller.DownloadTemplateController)
}
