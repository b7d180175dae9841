package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/notify"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/pkg/idempotency"
	"storefront/pkg/logging"
	"storefront/pkg/shutdown"
	"storefront/pkg/tracing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	log := logging.New()
	slog.SetDefault(log)

	// .envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	// 金額はJSONで数値
	decimal.MarshalJSONWithoutQuotes = true

	// HTTPで受けたtraceparentをKafkaのイベントまで引き継ぐ
	tracing.SetupPropagator()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), log)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//メール（SMTP未設定ならログだけ）
	var mailer notify.Mailer = notify.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	}

	//注文イベント
	var publisher notify.Publisher = notify.NopPublisher{}
	var kafkaWriter *notify.Writer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaWriter = notify.NewWriter(cfg.KafkaBrokers)
		publisher = notify.NewKafkaPublisher(log, kafkaWriter, cfg.KafkaTopic)
	}

	dispatcher := notify.NewDispatcher(log, mailer, publisher, cfg.AdminEmail)

	//二重送信防止（Redis未設定なら無効）
	var idem echo.MiddlewareFunc
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		idem = idempotency.Middleware(store, userScope, log)
	}

	//Usecase生成
	numbers := usecase.NewOrderNumberGenerator(idGen, clock)
	orderUC := usecase.NewOrderUsecase(txm, numbers, clock, dispatcher)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock, dispatcher)
	cartUC := usecase.NewCartUsecase(txm)
	productUC := usecase.NewProductUsecase(txm, productRepo, categoryRepo, clock)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo)
	userUC := usecase.NewUserUsecase(txm, userRepo, usecase.NewBcryptPasswordHasher(bcrypt.DefaultCost), clock)
	contactUC := usecase.NewContactUsecase(dispatcher, clock, usecase.DefaultContactInfo())
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	e := server.New(cfg, log, userRepo, server.Handlers{
		User:         handler.NewUserHandler(userUC),
		AdminUser:    handler.NewAdminUserHandler(userUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC, idem),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, auditUC),
		Contact:      handler.NewContactHandler(contactUC),
	})

	//Server起動
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.GoEnv)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "err", err)
	}

	//送信中の通知を待つ
	dispatcher.Wait()

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Warn("kafka close", "err", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func userScope(c echo.Context) string {
	uid, _ := c.Get(middleware.CtxUserIDKey).(int64)
	return "orders:" + strconv.FormatInt(uid, 10)
}
