package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// ProductController gerencia as requisições do catálogo mínimo de produtos
type ProductController struct {
	productRepo product.Repository
	logger      logger.Logger
}

// NewProductController cria uma nova instância de ProductController
func NewProductController(productRepo product.Repository, logger logger.Logger) *ProductController {
	return &ProductController{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create cria um produto
// @Summary Criar produto
// @Description Cria um produto no catálogo do tenant
// @Tags products
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param product body dto.ProductRequest true "Dados do produto"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	tenantID := ctx.GetString("tenant_id")

	p, err := product.NewProduct(tenantID, req.SKU, req.Name, req.Unit, req.SellPrice)
	if err != nil {
		respondDomainError(ctx, "erro ao criar produto", err)
		return
	}

	if err := c.productRepo.Create(ctx.Request.Context(), p); err != nil {
		respondDomainError(ctx, "erro ao criar produto", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToProductResponse(p))
}

// Get retorna um produto pelo ID
// @Summary Buscar produto
// @Description Retorna os dados de um produto pelo ID
// @Tags products
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do produto"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	p, err := c.productRepo.FindByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar produto", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// GetBySKU retorna um produto pelo SKU
// @Summary Buscar produto por SKU
// @Description Retorna os dados de um produto pelo SKU dentro do tenant
// @Tags products
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param sku path string true "SKU do produto"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/sku/{sku} [get]
func (c *ProductController) GetBySKU(ctx *gin.Context) {
	tenantID := ctx.GetString("tenant_id")

	p, err := c.productRepo.FindBySKU(ctx.Request.Context(), tenantID, ctx.Param("sku"))
	if err != nil {
		respondDomainError(ctx, "erro ao buscar produto", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// List retorna os produtos do tenant
// @Summary Listar produtos
// @Description Retorna os produtos do tenant ordenados por nome
// @Tags products
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {array} dto.ProductResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products [get]
func (c *ProductController) List(ctx *gin.Context) {
	tenantID := ctx.GetString("tenant_id")

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	pagination := dto.GetPagination(page, pageSize)

	products, err := c.productRepo.ListByTenant(ctx.Request.Context(), tenantID,
		pagination.PageSize, (pagination.Page-1)*pagination.PageSize)
	if err != nil {
		respondDomainError(ctx, "erro ao listar produtos", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProductListResponse(products))
}
