package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	admentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	admhandler "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/handler"
	admrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	admsvc "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/config"
	finentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	finhandler "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/handler"
	finrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	finsvc "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/service"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/middleware"
	purentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	purhandler "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/handler"
	purrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	pursvc "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/service"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/shared/cnpj"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/shared/storage"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载.env文件（本地开发用）
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting Gestor server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&admentity.Tenant{},
		&admentity.Company{},
		&admentity.CostCenter{},
		&admentity.User{},
		&admentity.RolePermission{},
		&admentity.Veterinarian{},
	); err != nil {
		zapLogger.Warn("AutoMigrate admin tables warning", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&purentity.Supplier{},
		&purentity.PurchaseOrder{},
		&purentity.OrderItem{},
		&purentity.BoletoInstallment{},
		&purentity.Quote{},
		&purentity.QuoteItem{},
		&purentity.OrderActivityLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate purchasing tables warning", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&finentity.Expense{},
		&finentity.Revenue{},
	); err != nil {
		zapLogger.Warn("AutoMigrate finance tables warning", zap.Error(err))
	}

	// 补充索引（AutoMigrate不生成组合索引）
	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_pur_purchase_orders_tenant_status ON pur_purchase_orders(tenant_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_pur_order_boletos_order ON pur_order_boletos(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_fin_expenses_tenant_date ON fin_expenses(tenant_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_fin_revenues_tenant_date ON fin_revenues(tenant_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_pur_order_activity_logs_order ON pur_order_activity_logs(order_id, created_at)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_adm_tenants_name ON adm_tenants(name)",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化MinIO附件存储
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("Failed to initialize MinIO client, attachments disabled", zap.Error(err))
			minioClient = nil
		}
	}
	store := storage.NewAttachmentStore(minioClient, cfg.MinIO.Bucket)

	// CNPJ税号查询客户端（Redis缓存）
	cnpjClient := cnpj.NewClient(cfg.CNPJ.BaseURL, cfg.CNPJ.Timeout, rdb, cfg.CNPJ.CacheTTL)

	// 仓库
	admRepos := admrepo.NewRepositories(db)
	purRepos := purrepo.NewRepositories(db)
	finRepos := finrepo.NewRepositories(db)

	// 服务
	authSvc := admsvc.NewAuthService(admRepos.User, admRepos.Tenant, admRepos.Role, rdb, cfg)
	tenantSvc := admsvc.NewTenantService(admRepos.Tenant, admRepos.User)
	userSvc := admsvc.NewUserService(admRepos.User, admRepos.Tenant)
	roleSvc := admsvc.NewRoleService(admRepos.Role)
	companySvc := admsvc.NewCompanyService(admRepos.Company)
	vetSvc := admsvc.NewVeterinarianService(admRepos.Veterinarian, admRepos.User, finRepos.Expense)

	supplierSvc := pursvc.NewSupplierService(purRepos.Supplier, admRepos.User, cnpjClient)
	orderSvc := pursvc.NewOrderService(purRepos.Order, purRepos.Supplier, purRepos.ActivityLog, admRepos.Company, finRepos.Expense, store)
	quoteSvc := pursvc.NewQuoteService(purRepos.Quote, purRepos.Supplier, store)

	expenseSvc := finsvc.NewExpenseService(finRepos.Expense)
	revenueSvc := finsvc.NewRevenueService(finRepos.Revenue)
	reportSvc := finsvc.NewReportService(finRepos.Expense, finRepos.Revenue, purRepos.Order)

	// 处理器
	admHandlers := admhandler.NewHandlers(authSvc, tenantSvc, userSvc, roleSvc, companySvc, vetSvc)
	purHandlers := purhandler.NewHandlers(supplierSvc, orderSvc, quoteSvc)
	finHandlers := finhandler.NewHandlers(expenseSvc, revenueSvc, reportSvc)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, admHandlers, purHandlers, finHandlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(
	r *gin.Engine,
	adm *admhandler.Handlers,
	pur *purhandler.Handlers,
	fin *finhandler.Handlers,
	cfg *config.Config,
) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", adm.Auth.Login)
			auth.POST("/refresh", adm.Auth.Refresh)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", adm.Auth.Me)
			authorized.POST("/auth/logout", adm.Auth.Logout)
			authorized.POST("/auth/change-password", adm.Auth.ChangePassword)
			authorized.GET("/auth/permissions", adm.Role.MyPermissions)

			// 租户管理（系统级，仅license_admin）
			tenants := authorized.Group("/tenants")
			tenants.Use(middleware.RequireLicenseAdmin())
			{
				tenants.GET("", adm.Tenant.ListTenants)
				tenants.POST("", adm.Tenant.CreateTenant)
				tenants.POST("/sweep-expired", adm.Tenant.SweepExpired)
				tenants.GET("/:id", adm.Tenant.GetTenant)
				tenants.PUT("/:id", adm.Tenant.UpdateTenant)
				tenants.DELETE("/:id", adm.Tenant.DeleteTenant)
				tenants.POST("/:id/renew", adm.Tenant.RenewTenant)
				tenants.POST("/:id/suspend", adm.Tenant.SuspendTenant)
				tenants.POST("/:id/activate", adm.Tenant.ActivateTenant)
			}

			// 用户管理（租户管理员）
			users := authorized.Group("/users")
			users.Use(middleware.RequireAnyRole("admin"))
			{
				users.GET("", adm.User.ListUsers)
				users.POST("", adm.User.CreateUser)
				users.GET("/:id", adm.User.GetUser)
				users.PUT("/:id", adm.User.UpdateUser)
				users.DELETE("/:id", adm.User.DeleteUser)
			}

			// 角色权限配置（租户管理员）
			roles := authorized.Group("/roles")
			roles.Use(middleware.RequireAnyRole("admin"))
			{
				roles.GET("", adm.Role.ListRoles)
				roles.GET("/:role", adm.Role.GetRole)
				roles.PUT("/:role", adm.Role.UpsertRole)
			}

			// 公司与成本中心
			companies := authorized.Group("/companies")
			{
				companies.GET("", adm.Company.ListCompanies)
				companies.GET("/:id", adm.Company.GetCompany)
				companies.POST("", middleware.RequireAnyRole("admin"), adm.Company.CreateCompany)
				companies.PUT("/:id", middleware.RequireAnyRole("admin"), adm.Company.UpdateCompany)
				companies.DELETE("/:id", middleware.RequireAnyRole("admin"), adm.Company.DeleteCompany)
				companies.POST("/:id/cost-centers", middleware.RequireAnyRole("admin"), adm.Company.AddCostCenter)
				companies.DELETE("/:id/cost-centers/:ccId", middleware.RequireAnyRole("admin"), adm.Company.RemoveCostCenter)
			}

			// 兽医管理
			vets := authorized.Group("/veterinarians", middleware.RequirePermission(admentity.PermVets))
			{
				vets.GET("", adm.Veterinarian.ListVeterinarians)
				vets.GET("/:id", adm.Veterinarian.GetVeterinarian)
				vets.POST("", middleware.RequireAnyRole("admin"), adm.Veterinarian.CreateVeterinarian)
				vets.PUT("/:id", middleware.RequireAnyRole("admin"), adm.Veterinarian.UpdateVeterinarian)
				vets.DELETE("/:id", middleware.RequireAnyRole("admin"), adm.Veterinarian.DeleteVeterinarian)
				vets.POST("/:id/schedule-payment", middleware.RequireAnyRole("admin", "financeiro"), adm.Veterinarian.SchedulePayment)
			}

			// 供应商
			suppliers := authorized.Group("/suppliers", middleware.RequirePermission(admentity.PermSuppliers))
			{
				suppliers.GET("", pur.Supplier.ListSuppliers)
				suppliers.GET("/:id", pur.Supplier.GetSupplier)
				suppliers.POST("", middleware.RequireAnyRole("admin", "compras"), pur.Supplier.CreateSupplier)
				suppliers.PUT("/:id", middleware.RequireAnyRole("admin", "compras"), pur.Supplier.UpdateSupplier)
				suppliers.DELETE("/:id", middleware.RequireAnyRole("admin", "compras"), pur.Supplier.DeleteSupplier)
			}
			authorized.GET("/cnpj/:cnpj", middleware.RequirePermission(admentity.PermSuppliers), middleware.RequireAnyRole("admin", "compras"), pur.Supplier.LookupCNPJ)

			// 采购订单
			orders := authorized.Group("/purchase-orders", middleware.RequirePermission(admentity.PermPurchasing))
			{
				orders.GET("", pur.Order.ListOrders)
				orders.GET("/:id", pur.Order.GetOrder)
				orders.GET("/:id/activity", pur.Order.OrderActivity)
				orders.GET("/:id/documents/:kind", pur.Order.DownloadDocument)
				orders.POST("", middleware.RequireAnyRole("admin", "compras"), pur.Order.CreateOrder)
				orders.PUT("/:id/items", middleware.RequireAnyRole("admin", "compras"), pur.Order.UpdateOrderItems)
				orders.DELETE("/:id", middleware.RequireAnyRole("admin"), pur.Order.DeleteOrder)

				// 单据提交：供应商门户用户也可操作
				orders.POST("/:id/documents", middleware.RequireAnyRole("admin", "compras", "fornecedor"), pur.Order.SubmitDocuments)
				orders.POST("/:id/confirm-delivery", middleware.RequireAnyRole("admin", "compras"), pur.Order.ConfirmDelivery)

				// 审批与付款
				orders.POST("/:id/approve", middleware.RequireAnyRole("admin", "financeiro", "compras"), pur.Order.ApproveDocuments)
				orders.POST("/:id/reject", middleware.RequireAnyRole("admin", "financeiro", "compras"), pur.Order.RejectOrder)
				orders.POST("/:id/send-to-payment", middleware.RequireAnyRole("admin", "financeiro", "compras"), pur.Order.SendToPayment)
				orders.POST("/:id/complete", middleware.RequireAnyRole("admin", "financeiro", "compras"), pur.Order.CompleteOrder)
			}
			authorized.POST("/purchase-orders/sweep-late", middleware.RequirePermission(admentity.PermPurchasing), middleware.RequireAnyRole("admin", "compras"), pur.Order.SweepLate)

			// 报价单
			quotes := authorized.Group("/quotes", middleware.RequirePermission(admentity.PermPurchasing))
			{
				quotes.GET("", pur.Quote.ListQuotes)
				quotes.GET("/:id", pur.Quote.GetQuote)
				quotes.POST("", middleware.RequireAnyRole("admin", "compras"), pur.Quote.CreateQuote)
				quotes.PUT("/:id/status", middleware.RequireAnyRole("admin", "compras"), pur.Quote.UpdateQuoteStatus)
				quotes.POST("/:id/attachment", middleware.RequireAnyRole("admin", "compras"), pur.Quote.UploadQuoteAttachment)
				quotes.DELETE("/:id", middleware.RequireAnyRole("admin", "compras"), pur.Quote.DeleteQuote)
			}

			// 支出
			expenses := authorized.Group("/expenses", middleware.RequirePermission(admentity.PermExpenses))
			{
				expenses.GET("", fin.Expense.ListExpenses)
				expenses.GET("/:id", fin.Expense.GetExpense)
				expenses.POST("", middleware.RequireAnyRole("admin", "financeiro"), fin.Expense.CreateExpense)
				expenses.PUT("/:id", middleware.RequireAnyRole("admin", "financeiro"), fin.Expense.UpdateExpense)
				expenses.DELETE("/:id", middleware.RequireAnyRole("admin", "financeiro"), fin.Expense.DeleteExpense)
			}

			// 收入
			revenues := authorized.Group("/revenues", middleware.RequirePermission(admentity.PermRevenues))
			{
				revenues.GET("", fin.Revenue.ListRevenues)
				revenues.GET("/:id", fin.Revenue.GetRevenue)
				revenues.POST("", middleware.RequireAnyRole("admin", "financeiro"), fin.Revenue.CreateRevenue)
				revenues.PUT("/:id", middleware.RequireAnyRole("admin", "financeiro"), fin.Revenue.UpdateRevenue)
				revenues.DELETE("/:id", middleware.RequireAnyRole("admin", "financeiro"), fin.Revenue.DeleteRevenue)
			}

			// 财务报表
			reports := authorized.Group("/reports", middleware.RequirePermission(admentity.PermReports))
			reports.Use(middleware.RequireAnyRole("admin", "financeiro"))
			{
				reports.GET("/yearly", fin.Report.YearlyReport)
				reports.GET("/expense-breakdown", fin.Report.ExpenseBreakdown)
				reports.GET("/cashflow", fin.Report.Cashflow)
			}
		}
	}
}
