package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/internal/service"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// ReservationController gerencia as requisições do ciclo de vida de reservas
type ReservationController struct {
	reservationService *service.ReservationService
	logger             logger.Logger
}

// NewReservationController cria uma nova instância de ReservationController
func NewReservationController(reservationService *service.ReservationService, logger logger.Logger) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
		logger:             logger,
	}
}

// Create cria uma reserva
// @Summary Criar reserva
// @Description Cria uma reserva pendente, reservando o estoque de todos os itens
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reservation body dto.ReservationRequest true "Dados da reserva"
// @Success 201 {object} dto.ReservationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations [post]
func (c *ReservationController) Create(ctx *gin.Context) {
	var req dto.ReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	tenantID := ctx.GetString("tenant_id")
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	res, err := c.reservationService.Create(ctx.Request.Context(), tenantID, branchID,
		req.CustomerName, req.CustomerPhone, dto.ToReservationItems(req.Items),
		req.ExpiryDate, req.DepositAmount)
	if err != nil {
		respondDomainError(ctx, "erro ao criar reserva", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToReservationResponse(res))
}

// Get retorna uma reserva pelo ID
// @Summary Buscar reserva
// @Description Retorna os dados de uma reserva pelo ID
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da reserva"
// @Success 200 {object} dto.ReservationResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations/{id} [get]
func (c *ReservationController) Get(ctx *gin.Context) {
	res, err := c.reservationService.GetReservation(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar reserva", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

// List retorna as reservas da filial
// @Summary Listar reservas
// @Description Retorna as reservas da filial, opcionalmente filtradas por status
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param status query string false "Filtro de status (pending, completed, cancelled, expired)"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.ReservationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations [get]
func (c *ReservationController) List(ctx *gin.Context) {
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	reservations, err := c.reservationService.ListReservations(ctx.Request.Context(), branchID,
		reservation.Status(ctx.Query("status")),
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar reservas", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReservationListResponse(reservations))
}

// Cancel cancela uma reserva pendente
// @Summary Cancelar reserva
// @Description Cancela a reserva, libera o estoque reservado e estorna o sinal ativo
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da reserva"
// @Param cancel body dto.CancelReservationRequest true "Motivo do cancelamento"
// @Success 200 {object} dto.ReservationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (c *ReservationController) Cancel(ctx *gin.Context) {
	var req dto.CancelReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	res, err := c.reservationService.Cancel(ctx.Request.Context(), ctx.Param("id"), req.Reason)
	if err != nil {
		respondDomainError(ctx, "erro ao cancelar reserva", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

// Complete conclui uma reserva pendente
// @Summary Concluir reserva
// @Description Baixa o estoque reservado, registra a venda vinculada e converte o sinal
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da reserva"
// @Param complete body dto.CompleteReservationRequest true "Forma de pagamento"
// @Success 200 {object} dto.SaleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations/{id}/complete [post]
func (c *ReservationController) Complete(ctx *gin.Context) {
	var req dto.CompleteReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	_, linkedSale, err := c.reservationService.Complete(ctx.Request.Context(), ctx.Param("id"),
		sale.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondDomainError(ctx, "erro ao concluir reserva", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleResponse(linkedSale))
}

// Expire executa a varredura de reservas vencidas
// @Summary Expirar reservas vencidas
// @Description Transiciona as reservas pendentes vencidas para expiradas e libera o estoque
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations/expire [post]
func (c *ReservationController) Expire(ctx *gin.Context) {
	count, err := c.reservationService.ExpireDue(ctx.Request.Context(), time.Now())
	if err != nil {
		respondDomainError(ctx, "erro ao expirar reservas", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("varredura concluída", gin.H{"expired": count}))
}

// GetDeposit retorna o sinal de uma reserva
// @Summary Buscar sinal da reserva
// @Description Retorna o sinal pago na criação da reserva e seu estado atual
// @Tags reservations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da reserva"
// @Success 200 {object} dto.DepositResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reservations/{id}/deposit [get]
func (c *ReservationController) GetDeposit(ctx *gin.Context) {
	dep, err := c.reservationService.GetDeposit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar sinal", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDepositResponse(dep))
}
