// Файл: internal/routes/routes.go
package routes

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dispatch-system/internal/controllers"
	"dispatch-system/internal/listeners"
	"dispatch-system/internal/repositories"
	"dispatch-system/internal/services"
	"dispatch-system/internal/workers"
	"dispatch-system/pkg/blobstore"
	"dispatch-system/pkg/config"
	"dispatch-system/pkg/eventbus"
	"dispatch-system/pkg/middleware"
	"dispatch-system/pkg/service"
	"dispatch-system/pkg/telegram"
)

const sweepInterval = time.Minute

// Background - фоновая часть приложения, собранная вместе с роутером.
// Пул и обходчик запускает main, чтобы управлять их жизненным циклом.
type Background struct {
	Pool    *workers.Pool
	Sweeper *workers.Sweeper
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	store blobstore.BlobStoreInterface,
	cfg *config.Config,
	logger *zap.Logger,
) *Background {
	logger.Info("InitRouter: начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	authMW := middleware.NewAuthMiddleware(jwtSvc, cacheRepo, logger)
	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(logger)
	telegramSvc := telegram.NewService(cfg.Telegram.BotToken)

	location, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Warn("неизвестный часовой пояс, используем UTC",
			zap.String("timezone", cfg.DisplayTimezone), zap.Error(err))
		location = time.UTC
	}

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	workTypeRepo := repositories.NewWorkTypeRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	companyRepo := repositories.NewCompanyRepository(dbConn)
	taskRepo := repositories.NewTaskRepository(dbConn, logger)
	attachmentRepo := repositories.NewAttachmentRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)
	historyRepo := repositories.NewTaskHistoryRepository(dbConn)
	broadcastRepo := repositories.NewBroadcastRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)

	// --- 2. СЕРВИСЫ ---
	historySvc := services.NewHistoryService(historyRepo, taskRepo, userRepo, location, logger)
	notificationSvc := services.NewNotificationService(notificationRepo, userRepo, telegramSvc, logger)
	draftSvc := services.NewDraftService(
		taskRepo, workTypeRepo, equipmentRepo, companyRepo, userRepo, attachmentRepo,
		historySvc, notificationSvc, txManager, bus, logger,
	)
	taskSvc := services.NewTaskService(
		taskRepo, workTypeRepo, companyRepo, userRepo, broadcastRepo,
		historySvc, notificationSvc, txManager, bus, logger,
	)
	reviewSvc := services.NewReviewService(
		taskRepo, reportRepo, attachmentRepo, workTypeRepo, userRepo,
		historySvc, notificationSvc, txManager, bus, logger,
	)
	attachmentSvc := services.NewAttachmentService(
		taskRepo, attachmentRepo, historySvc, txManager, store, bus, logger,
	)
	authSvc := services.NewAuthService(userRepo, cacheRepo, jwtSvc, logger)
	userSvc := services.NewUserService(userRepo, logger)
	referenceSvc := services.NewReferenceService(workTypeRepo, equipmentRepo, companyRepo, logger)
	exportSvc := services.NewExportService(historySvc, logger)

	// --- 3. ФОНОВАЯ ЧАСТЬ ---
	pool := workers.NewPool(cfg.Worker.QueueSize, cfg.Worker.MaxRetries, logger)
	attachmentWorker := workers.NewAttachmentWorker(attachmentRepo, store, logger)
	listeners.Register(bus, pool, notificationSvc, attachmentWorker)
	sweeper := workers.NewSweeper(notificationSvc, attachmentWorker, sweepInterval, logger)

	// --- 4. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authSvc, jwtSvc, logger)
	draftCtrl := controllers.NewDraftController(draftSvc, logger)
	taskCtrl := controllers.NewTaskController(taskSvc, historySvc, exportSvc, logger)
	reportCtrl := controllers.NewReportController(reviewSvc, logger)
	attachmentCtrl := controllers.NewAttachmentController(attachmentSvc, logger)
	referenceCtrl := controllers.NewReferenceController(referenceSvc, logger)
	userCtrl := controllers.NewUserController(userSvc, logger)

	// --- 5. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl, authMW)
	runDraftRouter(secureGroup, draftCtrl)
	runTaskRouter(secureGroup, taskCtrl)
	runReportRouter(secureGroup, reportCtrl)
	runAttachmentRouter(secureGroup, attachmentCtrl)
	runReferenceRouter(secureGroup, referenceCtrl)
	runUserRouter(secureGroup, userCtrl)

	logger.Info("InitRouter: создание маршрутов завершено")

	return &Background{Pool: pool, Sweeper: sweeper}
}
