package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/service"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// CashierController gerencia as requisições de sessões e movimentações de caixa
type CashierController struct {
	cashierService *service.CashierService
	logger         logger.Logger
}

// NewCashierController cria uma nova instância de CashierController
func NewCashierController(cashierService *service.CashierService, logger logger.Logger) *CashierController {
	return &CashierController{
		cashierService: cashierService,
		logger:         logger,
	}
}

// OpenSession abre uma sessão de caixa para a filial
// @Summary Abrir sessão de caixa
// @Description Abre uma sessão de caixa com fundo de troco; cada filial admite no máximo uma sessão aberta
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session body dto.OpenSessionRequest true "Fundo de troco"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions [post]
func (c *CashierController) OpenSession(ctx *gin.Context) {
	var req dto.OpenSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	tenantID := ctx.GetString("tenant_id")
	branchID := ctx.GetString("branch_id")
	openedBy := ctx.GetString("user_id")

	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	session, err := c.cashierService.OpenSession(ctx.Request.Context(), tenantID, branchID, openedBy, req.InitialAmount)
	if err != nil {
		respondDomainError(ctx, "erro ao abrir sessão de caixa", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// CloseSession fecha a sessão de caixa
// @Summary Fechar sessão de caixa
// @Description Fecha a sessão, calcula a diferença entre conferido e esperado e gera o relatório de fechamento
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da sessão"
// @Param close body dto.CloseSessionRequest true "Valor conferido"
// @Success 200 {object} dto.ClosureReportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/{id}/close [post]
func (c *CashierController) CloseSession(ctx *gin.Context) {
	var req dto.CloseSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	sessionID := ctx.Param("id")

	_, report, err := c.cashierService.CloseSession(ctx.Request.Context(), sessionID, req.CountedAmount)
	if err != nil {
		respondDomainError(ctx, "erro ao fechar sessão de caixa", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToClosureReportResponse(report))
}

// GetSession retorna uma sessão pelo ID
// @Summary Buscar sessão de caixa
// @Description Retorna os dados de uma sessão de caixa pelo ID
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/{id} [get]
func (c *CashierController) GetSession(ctx *gin.Context) {
	session, err := c.cashierService.GetSession(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar sessão", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// GetOpenSession retorna a sessão aberta da filial
// @Summary Buscar sessão aberta
// @Description Retorna a sessão de caixa aberta da filial do cabeçalho branch-id
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/open [get]
func (c *CashierController) GetOpenSession(ctx *gin.Context) {
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	session, err := c.cashierService.GetOpenSession(ctx.Request.Context(), branchID)
	if err != nil {
		respondDomainError(ctx, "erro ao buscar sessão aberta", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// ListSessions retorna as sessões da filial
// @Summary Listar sessões de caixa
// @Description Retorna as sessões da filial, da mais recente para a mais antiga
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions [get]
func (c *CashierController) ListSessions(ctx *gin.Context) {
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	sessions, err := c.cashierService.ListSessions(ctx.Request.Context(), branchID,
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar sessões", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSessionListResponse(sessions))
}

// GetClosureReport retorna o relatório de fechamento de uma sessão
// @Summary Buscar relatório de fechamento
// @Description Retorna o relatório de fechamento imutável de uma sessão fechada
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.ClosureReportResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/{id}/report [get]
func (c *CashierController) GetClosureReport(ctx *gin.Context) {
	report, err := c.cashierService.GetClosureReport(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar relatório", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToClosureReportResponse(report))
}

// RegisterMovement registra uma movimentação manual na sessão
// @Summary Registrar movimentação de caixa
// @Description Registra suprimento (valor positivo) ou sangria (valor negativo) na sessão
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da sessão"
// @Param movement body dto.CashMovementRequest true "Valor e motivo"
// @Success 201 {object} dto.CashMovementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/{id}/movements [post]
func (c *CashierController) RegisterMovement(ctx *gin.Context) {
	var req dto.CashMovementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	tenantID := ctx.GetString("tenant_id")
	sessionID := ctx.Param("id")

	movement, err := c.cashierService.RegisterMovement(ctx.Request.Context(), tenantID, sessionID, req.Amount, req.Reason)
	if err != nil {
		respondDomainError(ctx, "erro ao registrar movimentação", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCashMovementResponse(movement))
}

// ListMovements retorna as movimentações de uma sessão
// @Summary Listar movimentações de caixa
// @Description Retorna as movimentações da sessão em ordem de criação
// @Tags cashier
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da sessão"
// @Success 200 {array} dto.CashMovementResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cashier/sessions/{id}/movements [get]
func (c *CashierController) ListMovements(ctx *gin.Context) {
	movements, err := c.cashierService.ListMovements(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao listar movimentações", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCashMovementListResponse(movements))
}
