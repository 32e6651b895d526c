package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// StockController gerencia as requisições do razão de estoque
type StockController struct {
	stockRepo product.StockRepository
	logger    logger.Logger
}

// NewStockController cria uma nova instância de StockController
func NewStockController(stockRepo product.StockRepository, logger logger.Logger) *StockController {
	return &StockController{
		stockRepo: stockRepo,
		logger:    logger,
	}
}

// Adjust ajusta o estoque de um produto na filial
// @Summary Ajustar estoque
// @Description Aplica um delta ao estoque físico de um produto na filial do cabeçalho branch-id
// @Tags stock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do produto"
// @Param adjust body dto.AdjustStockRequest true "Delta e observações"
// @Success 200 {object} dto.StockResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock/{id}/adjust [post]
func (c *StockController) Adjust(ctx *gin.Context) {
	var req dto.AdjustStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	productID := ctx.Param("id")
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	stock, err := c.stockRepo.Adjust(ctx.Request.Context(), productID, branchID, req.Delta, req.Notes)
	if err != nil {
		respondDomainError(ctx, "erro ao ajustar estoque", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStockResponse(stock))
}

// BatchAdjust aplica vários ajustes de estoque como uma única unidade
// @Summary Ajustar estoque em lote
// @Description Aplica deltas a várias linhas (produto, filial) de forma atômica; usado também para transferências
// @Tags stock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param batch body dto.BatchAdjustRequest true "Linhas de ajuste"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock/batch-adjust [post]
func (c *StockController) BatchAdjust(ctx *gin.Context) {
	var req dto.BatchAdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	err := c.stockRepo.BatchAdjust(ctx.Request.Context(), dto.ToStockLines(req.Lines), req.ReferenceID)
	if err != nil {
		respondDomainError(ctx, "erro ao ajustar estoque em lote", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("ajustes aplicados", nil))
}

// Transfer transfere estoque entre filiais
// @Summary Transferir estoque
// @Description Move quantidade de um produto entre duas filiais como um par débito/crédito atômico
// @Tags stock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param transfer body dto.TransferStockRequest true "Dados da transferência"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock/transfer [post]
func (c *StockController) Transfer(ctx *gin.Context) {
	var req dto.TransferStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	transferID := "transfer:" + req.FromBranchID + ":" + req.ToBranchID
	deltas := []product.StockLine{
		{ProductID: req.ProductID, BranchID: req.FromBranchID, Quantity: -req.Quantity},
		{ProductID: req.ProductID, BranchID: req.ToBranchID, Quantity: req.Quantity},
	}

	if err := c.stockRepo.BatchAdjust(ctx.Request.Context(), deltas, transferID); err != nil {
		respondDomainError(ctx, "erro ao transferir estoque", err)
		return
	}

	c.logger.Info("transferência de estoque concluída",
		"product_id", req.ProductID,
		"from", req.FromBranchID,
		"to", req.ToBranchID,
		"quantity", req.Quantity)

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("transferência concluída", nil))
}

// GetStock retorna o estoque de um produto na filial
// @Summary Consultar estoque
// @Description Retorna quantidade física, reservada e disponível de um produto na filial
// @Tags stock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do produto"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock/{id} [get]
func (c *StockController) GetStock(ctx *gin.Context) {
	productID := ctx.Param("id")
	branchID := ctx.GetString("branch_id")

	if branchID == "" {
		stocks, err := c.stockRepo.ListStockByProduct(ctx.Request.Context(), productID)
		if err != nil {
			respondDomainError(ctx, "erro ao consultar estoque", err)
			return
		}
		ctx.JSON(http.StatusOK, dto.ToStockListResponse(stocks))
		return
	}

	stock, err := c.stockRepo.FindStock(ctx.Request.Context(), productID, branchID)
	if err != nil {
		respondDomainError(ctx, "erro ao consultar estoque", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStockResponse(stock))
}

// ListMovements retorna o histórico de movimentações de um produto na filial
// @Summary Listar movimentações de estoque
// @Description Retorna a trilha de auditoria de movimentações, da mais recente para a mais antiga
// @Tags stock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do produto"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.StockMovementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock/{id}/movements [get]
func (c *StockController) ListMovements(ctx *gin.Context) {
	productID := ctx.Param("id")
	branchID := ctx.GetString("branch_id")
	if branchID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "filial não informada", "o cabeçalho 'branch-id' é obrigatório"))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	movements, err := c.stockRepo.ListMovements(ctx.Request.Context(), productID, branchID,
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar movimentações", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStockMovementListResponse(movements))
}
