package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupProductRoutes configura as rotas para o catálogo de produtos
func SetupProductRoutes(router *gin.RouterGroup, productController *controller.ProductController) {
	productRouter := router.Group("/products")
	productRouter.Use(auth.JWTAuthMiddleware())
	{
		productRouter.POST("", productController.Create)
		productRouter.GET("", productController.List)
		productRouter.GET("/:id", productController.Get)
		productRouter.GET("/sku/:sku", productController.GetBySKU)
	}
}
