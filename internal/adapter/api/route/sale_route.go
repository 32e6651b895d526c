package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupSaleRoutes configura as rotas para o módulo de vendas
func SetupSaleRoutes(router *gin.RouterGroup, saleController *controller.SaleController) {
	saleRouter := router.Group("/sales")
	saleRouter.Use(auth.JWTAuthMiddleware())
	{
		saleRouter.POST("", saleController.Create)
		saleRouter.GET("", saleController.List)
		saleRouter.GET("/:id", saleController.Get)
	}
}
