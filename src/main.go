package main

import (
	_ "Backend-FaceAttend/docs"
	"Backend-FaceAttend/src/config"
	"Backend-FaceAttend/src/controllers"
	"Backend-FaceAttend/src/database"
	"Backend-FaceAttend/src/jobs"
	"Backend-FaceAttend/src/logger"
	"Backend-FaceAttend/src/routes"
	"Backend-FaceAttend/src/seeder"
	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/services/roster"
	"Backend-FaceAttend/src/services/settings"
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("ATTEND_CONFIG"))
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.ConnectMongoDB(ctx, cfg.Mongo.URI)
	if err != nil {
		logg.Fatal("mongo connection failed", zap.Error(err))
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	logg.Info("✅ MongoDB connected successfully")
	db := mongoClient.Database(cfg.Mongo.Database)

	rosterSvc := roster.NewService(db)
	settingsStore := settings.NewMongoStore(db)
	ledger := attendance.NewMongoLedger(db.Collection("attendances"), rosterSvc)
	if err := database.EnsureIndexes(ctx, rosterSvc, settingsStore, ledger); err != nil {
		logg.Fatal("index bootstrap failed", zap.Error(err))
	}
	settingsSvc := settings.NewService(settingsStore, cfg.Attendance.DefaultCutoff, logg)

	if cfg.Seed.Sample {
		operatorID, err := cfg.Seed.Operator()
		if err != nil {
			logg.Fatal("invalid seed operator", zap.Error(err))
		}
		if _, err := seeder.SeedSampleRoster(ctx, db, operatorID, cfg.Seed.Members, cfg.Attendance.SignatureDims, logg); err != nil {
			logg.Error("sample roster seed failed", zap.Error(err))
		}
	}

	opts, err := cfg.CoordinatorOptions()
	if err != nil {
		logg.Fatal("invalid attendance options", zap.Error(err))
	}

	refresher := jobs.NewRefresher(rosterSvc, logg)
	deps := attendance.Dependencies{
		Ledger:   ledger,
		Roster:   rosterSvc,
		Settings: settingsSvc,
	}

	redisClient, err := database.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logg.Fatal("redis connection failed", zap.Error(err))
	}
	var worker *asynq.Server
	if redisClient != nil {
		defer redisClient.Close()
		redisOpt := database.AsynqRedisOpt(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()

		deps.Cache = settings.NewRedisCache(redisClient, cfg.Attendance.SettingsTTL, logg)
		deps.Queue = jobs.NewAsynqQueue(asynqClient, cfg.Worker.MaxRetry, cfg.Worker.TaskTimeout)

		worker = database.NewAsynqServer(redisOpt, jobs.QueueSignatures, cfg.Worker.Concurrency, jobs.ErrorHandler(logg), logg)
		mux := asynq.NewServeMux()
		jobs.RegisterHandlers(mux, refresher)
		if err := worker.Start(mux); err != nil {
			logg.Fatal("asynq worker failed to start", zap.Error(err))
		}
		logg.Info("✅ Asynq worker started", zap.String("queue", jobs.QueueSignatures))
	} else {
		logg.Warn("⚠️ Redis not configured, using in-process cache and worker pool")
		deps.Cache = attendance.NewMemoryCache(cfg.Attendance.SettingsTTL, nil)
		pool := jobs.NewLocalPool(refresher.Refresh, cfg.Worker.Concurrency, cfg.Worker.QueueSize, cfg.Worker.TaskTimeout, logg)
		defer pool.Close()
		deps.Queue = pool
	}

	coordinator := attendance.NewCoordinator(deps, opts, logg)
	canceller := attendance.NewCanceller(ledger, logg)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	routes.InitRoutes(app, routes.Handlers{
		Attendance: controllers.NewAttendanceController(coordinator, canceller),
		Settings:   controllers.NewSettingsController(settingsSvc, coordinator),
	}, cfg.Auth.JWTSecret)

	go func() {
		<-ctx.Done()
		logg.Info("shutting down")
		_ = app.Shutdown()
	}()

	logg.Info("Server is running on port " + cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%s", url.PathEscape(cfg.Server.Port))); err != nil {
		logg.Error("server stopped", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
}
