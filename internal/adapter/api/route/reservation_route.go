package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/pkg/auth"
)

// SetupReservationRoutes configura as rotas para o ciclo de vida de reservas
func SetupReservationRoutes(router *gin.RouterGroup, reservationController *controller.ReservationController) {
	reservationRouter := router.Group("/reservations")
	reservationRouter.Use(auth.JWTAuthMiddleware())
	{
		reservationRouter.POST("", reservationController.Create)
		reservationRouter.GET("", reservationController.List)
		reservationRouter.POST("/expire", reservationController.Expire)
		reservationRouter.GET("/:id", reservationController.Get)
		reservationRouter.POST("/:id/cancel", reservationController.Cancel)
		reservationRouter.POST("/:id/complete", reservationController.Complete)
		reservationRouter.GET("/:id/deposit", reservationController.GetDeposit)
	}
}
