package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/controller"
	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/route"
	"github.com/hugohenrick/pdv-multiloja/internal/adapter/repository"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
	"github.com/hugohenrick/pdv-multiloja/internal/service"
	"github.com/hugohenrick/pdv-multiloja/pkg/branch"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// App representa a aplicação e suas dependências
type App struct {
	router *gin.Engine
	db     *database.PostgresDB
	logger logger.Logger

	tenantController      *controller.TenantController
	branchController      *controller.BranchController
	productController     *controller.ProductController
	stockController       *controller.StockController
	cashierController     *controller.CashierController
	saleController        *controller.SaleController
	reservationController *controller.ReservationController

	tenantMiddleware gin.HandlerFunc
}

// NewApp cria uma nova instância do aplicativo
func NewApp() (*App, error) {
	log := logger.NewLogger()

	// Configurar banco de dados
	config := database.NewPostgresConfigFromEnv()
	db, err := database.NewPostgresDB(config)
	if err != nil {
		return nil, err
	}

	// Criar repositórios
	tenantRepo := repository.NewPostgresTenantRepository(db)
	branchRepo := repository.NewPostgresBranchRepository(db)
	productRepo := repository.NewPostgresProductRepository(db)
	stockRepo := repository.NewPostgresStockRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	movementRepo := repository.NewPostgresMovementRepository(db)
	saleRepo := repository.NewPostgresSaleRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)

	// Criar serviços
	cashierService := service.NewCashierService(sessionRepo, movementRepo, log)
	saleService := service.NewSaleService(saleRepo, sessionRepo, log)
	reservationService := service.NewReservationService(reservationRepo, stockRepo, saleService, sessionRepo, movementRepo, log)

	// Criar middleware de tenant
	tenantValidator := repository.NewTenantValidator(tenantRepo)
	tenantMiddleware := tenant.TenantMiddleware(tenantValidator)

	// Criar controllers
	tenantController := controller.NewTenantController(tenantRepo, db, log)
	branchController := controller.NewBranchController(branchRepo, log)
	productController := controller.NewProductController(productRepo, log)
	stockController := controller.NewStockController(stockRepo, log)
	cashierController := controller.NewCashierController(cashierService, log)
	saleController := controller.NewSaleController(saleService, log)
	reservationController := controller.NewReservationController(reservationService, log)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "tenant-id", "branch-id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	return &App{
		router:                router,
		db:                    db,
		logger:                log,
		tenantController:      tenantController,
		branchController:      branchController,
		productController:     productController,
		stockController:       stockController,
		cashierController:     cashierController,
		saleController:        saleController,
		reservationController: reservationController,
		tenantMiddleware:      tenantMiddleware,
	}, nil
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes(basePath string) {
	api := a.router.Group(basePath)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	// Rotas que não exigem o cabeçalho tenant-id
	route.SetupTenantRoutes(api, a.tenantController)

	// Rotas escopadas por tenant: o middleware valida o cabeçalho tenant-id
	// e resolve o schema; o de filial propaga o cabeçalho branch-id.
	tenantRoutes := api.Group("")
	tenantRoutes.Use(a.tenantMiddleware)
	tenantRoutes.Use(branch.BranchMiddleware())

	route.SetupBranchRoutes(tenantRoutes, a.branchController)
	route.SetupProductRoutes(tenantRoutes, a.productController)
	route.SetupStockRoutes(tenantRoutes, a.stockController)
	route.SetupCashierRoutes(tenantRoutes, a.cashierController)
	route.SetupSaleRoutes(tenantRoutes, a.saleController)
	route.SetupReservationRoutes(tenantRoutes, a.reservationController)
}

// Run inicia o servidor HTTP
func (a *App) Run() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	a.logger.Info("servidor iniciado", "port", port)

	return a.router.Run(":" + port)
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
