package routes

import (
	"book-inventory-backend/bleve/controllers"
	"book-inventory-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(app *fiber.App, appCtx *middleware.AppContext, controller *controllers.SearchController) {
	api := app.Group("/search", middleware.ProtectedRoute(appCtx))

	api.Get("/inventory", controller.SearchInventoryController)
	api.Get("/inventory/:id", controller.GetIndexedItemController)
}
