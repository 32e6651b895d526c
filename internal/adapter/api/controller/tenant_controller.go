package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/tenant"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// TenantController gerencia as requisições de tenants
type TenantController struct {
	tenantRepo tenant.Repository
	db         *database.PostgresDB
	logger     logger.Logger
}

// NewTenantController cria uma nova instância de TenantController
func NewTenantController(tenantRepo tenant.Repository, db *database.PostgresDB, logger logger.Logger) *TenantController {
	return &TenantController{
		tenantRepo: tenantRepo,
		db:         db,
		logger:     logger,
	}
}

// Create cria um tenant e provisiona seu schema
// @Summary Criar tenant
// @Description Cria um tenant, provisiona o schema dedicado e aplica as migrações
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body dto.TenantRequest true "Dados do tenant"
// @Success 201 {object} dto.TenantResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants [post]
func (c *TenantController) Create(ctx *gin.Context) {
	var req dto.TenantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	t, err := tenant.NewTenant(req.Name, req.Document)
	if err != nil {
		respondDomainError(ctx, "erro ao criar tenant", err)
		return
	}

	if err := c.tenantRepo.Create(ctx.Request.Context(), t); err != nil {
		respondDomainError(ctx, "erro ao criar tenant", err)
		return
	}

	if err := c.db.CreateTenantSchema(ctx.Request.Context(), t.Schema); err != nil {
		c.logger.Error("falha ao criar schema do tenant", "tenant_id", t.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao provisionar schema", err.Error()))
		return
	}

	if err := database.RunTenantMigrations(t.Schema); err != nil {
		c.logger.Error("falha ao aplicar migrações do tenant", "tenant_id", t.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao aplicar migrações", err.Error()))
		return
	}

	c.logger.Info("tenant criado", "tenant_id", t.ID, "schema", t.Schema)

	ctx.JSON(http.StatusCreated, dto.ToTenantResponse(t))
}

// Get retorna um tenant pelo ID
// @Summary Buscar tenant
// @Description Retorna os dados de um tenant pelo ID
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "ID do tenant"
// @Success 200 {object} dto.TenantResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{id} [get]
func (c *TenantController) Get(ctx *gin.Context) {
	t, err := c.tenantRepo.FindByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar tenant", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTenantResponse(t))
}

// List retorna os tenants cadastrados
// @Summary Listar tenants
// @Description Retorna os tenants cadastrados com paginação
// @Tags tenants
// @Accept json
// @Produce json
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.TenantResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants [get]
func (c *TenantController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	tenants, err := c.tenantRepo.List(ctx.Request.Context(),
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar tenants", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTenantListResponse(tenants))
}

// UpdateStatus atualiza o status de um tenant
// @Summary Atualizar status do tenant
// @Description Ativa ou desativa um tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "ID do tenant"
// @Param status path string true "Novo status (active, inactive)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{id}/status/{status} [patch]
func (c *TenantController) UpdateStatus(ctx *gin.Context) {
	status := tenant.Status(ctx.Param("status"))
	if status != tenant.StatusActive && status != tenant.StatusInactive {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "status inválido", "use 'active' ou 'inactive'"))
		return
	}

	if err := c.tenantRepo.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), status); err != nil {
		respondDomainError(ctx, "erro ao atualizar status do tenant", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("status atualizado", nil))
}
