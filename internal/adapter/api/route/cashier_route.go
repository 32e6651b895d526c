package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupCashierRoutes configura as rotas para sessões e movimentações de caixa
func SetupCashierRoutes(router *gin.RouterGroup, cashierController *controller.CashierController) {
	cashierRouter := router.Group("/cashier/sessions")
	cashierRouter.Use(auth.JWTAuthMiddleware())
	{
		cashierRouter.POST("", cashierController.OpenSession)
		cashierRouter.GET("", cashierController.ListSessions)
		cashierRouter.GET("/open", cashierController.GetOpenSession)
		cashierRouter.GET("/:id", cashierController.GetSession)
		cashierRouter.POST("/:id/close", cashierController.CloseSession)
		cashierRouter.GET("/:id/report", cashierController.GetClosureReport)
		cashierRouter.POST("/:id/movements", cashierController.RegisterMovement)
		cashierRouter.GET("/:id/movements", cashierController.ListMovements)
	}
}
