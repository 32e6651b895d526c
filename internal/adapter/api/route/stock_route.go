package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupStockRoutes configura as rotas para o razão de estoque
func SetupStockRoutes(router *gin.RouterGroup, stockController *controller.StockController) {
	stockRouter := router.Group("/stock")
	stockRouter.Use(auth.JWTAuthMiddleware())
	{
		stockRouter.GET("/:id", stockController.GetStock)
		stockRouter.GET("/:id/movements", stockController.ListMovements)
		stockRouter.POST("/:id/adjust", stockController.Adjust)
		stockRouter.POST("/batch-adjust", stockController.BatchAdjust)
		stockRouter.POST("/transfer", stockController.Transfer)
	}
}
