package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/internal/service"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// SaleController gerencia as requisições de vendas
type SaleController struct {
	saleService *service.SaleService
	logger      logger.Logger
}

// NewSaleController cria uma nova instância de SaleController
func NewSaleController(saleService *service.SaleService, logger logger.Logger) *SaleController {
	return &SaleController{
		saleService: saleService,
		logger:      logger,
	}
}

// Create registra uma venda
// @Summary Registrar venda
// @Description Registra a venda com baixa de estoque e lançamento na sessão de caixa como uma única transação
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param sale body dto.SaleRequest true "Itens e forma de pagamento"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [post]
func (c *SaleController) Create(ctx *gin.Context) {
	var req dto.SaleRequest
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

	s, err := c.saleService.RecordSale(ctx.Request.Context(), tenantID, branchID,
		dto.ToSaleItems(req.Items), sale.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondDomainError(ctx, "erro ao registrar venda", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSaleResponse(s))
}

// Get retorna uma venda pelo ID
// @Summary Buscar venda
// @Description Retorna os dados de uma venda pelo ID
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales/{id} [get]
func (c *SaleController) Get(ctx *gin.Context) {
	s, err := c.saleService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar venda", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleResponse(s))
}

// List retorna as vendas da filial
// @Summary Listar vendas
// @Description Retorna as vendas da filial, da mais recente para a mais antiga
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.SaleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [get]
func (c *SaleController) List(ctx *gin.Context) {
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	sales, err := c.saleService.ListSales(ctx.Request.Context(), branchID,
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar vendas", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleListResponse(sales))
}
