package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/branch"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// BranchController gerencia as requisições de filiais
type BranchController struct {
	branchRepo branch.Repository
	logger     logger.Logger
}

// NewBranchController cria uma nova instância de BranchController
func NewBranchController(branchRepo branch.Repository, logger logger.Logger) *BranchController {
	return &BranchController{
		branchRepo: branchRepo,
		logger:     logger,
	}
}

// Create cria uma filial
// @Summary Criar filial
// @Description Cria uma filial para o tenant do cabeçalho tenant-id
// @Tags branches
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param branch body dto.BranchRequest true "Dados da filial"
// @Success 201 {object} dto.BranchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /branches [post]
func (c *BranchController) Create(ctx *gin.Context) {
	var req dto.BranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	tenantID := ctx.GetString("tenant_id")

	b, err := branch.NewBranch(tenantID, req.Name, req.Code, req.IsMain)
	if err != nil {
		respondDomainError(ctx, "erro ao criar filial", err)
		return
	}

	if err := c.branchRepo.Create(ctx.Request.Context(), b); err != nil {
		respondDomainError(ctx, "erro ao criar filial", err)
		return
	}

	c.logger.Info("filial criada", "branch_id", b.ID, "tenant_id", tenantID)

	ctx.JSON(http.StatusCreated, dto.ToBranchResponse(b))
}

// Get retorna uma filial pelo ID
// @Summary Buscar filial
// @Description Retorna os dados de uma filial pelo ID
// @Tags branches
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da filial"
// @Success 200 {object} dto.BranchResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /branches/{id} [get]
func (c *BranchController) Get(ctx *gin.Context) {
	b, err := c.branchRepo.FindByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar filial", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBranchResponse(b))
}

// List retorna as filiais do tenant
// @Summary Listar filiais
// @Description Retorna as filiais do tenant com paginação
// @Tags branches
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.BranchResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /branches [get]
func (c *BranchController) List(ctx *gin.Context) {
	tenantID := ctx.GetString("tenant_id")

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	branches, err := c.branchRepo.List(ctx.Request.Context(), tenantID,
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar filiais", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBranchListResponse(branches))
}

// UpdateStatus atualiza o status de uma filial
// @Summary Atualizar status da filial
// @Description Ativa ou desativa uma filial
// @Tags branches
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID da filial"
// @Param status path string true "Novo status (active, inactive)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /branches/{id}/status/{status} [patch]
func (c *BranchController) UpdateStatus(ctx *gin.Context) {
	status := branch.Status(ctx.Param("status"))
	if status != branch.StatusActive && status != branch.StatusInactive {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "status inválido", "use 'active' ou 'inactive'"))
		return
	}

	if err := c.branchRepo.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), status); err != nil {
		respondDomainError(ctx, "erro ao atualizar status da filial", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("status atualizado", nil))
}
