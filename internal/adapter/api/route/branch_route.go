package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupBranchRoutes configura as rotas para o módulo de filiais
func SetupBranchRoutes(router *gin.RouterGroup, branchController *controller.BranchController) {
	branchRouter := router.Group("/branches")
	branchRouter.Use(auth.JWTAuthMiddleware())
	{
		branchRouter.POST("", branchController.Create)
		branchRouter.GET("", branchController.List)
		branchRouter.GET("/:id", branchController.Get)
		branchRouter.PATCH("/:id/status/:status", branchController.UpdateStatus)
	}
}
