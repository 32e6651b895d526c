package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
)

// SetupTenantRoutes configura as rotas para o módulo de tenants.
// A criação de tenant é a porta de entrada do sistema e não exige
// o cabeçalho tenant-id.
func SetupTenantRoutes(router *gin.RouterGroup, tenantController *controller.TenantController) {
	tenantRouter := router.Group("/tenants")
	{
		tenantRouter.POST("", tenantController.Create)
		tenantRouter.GET("", tenantController.List)
		tenantRouter.GET("/:id", tenantController.Get)
		tenantRouter.PATCH("/:id/status/:status", tenantController.UpdateStatus)
	}
}
