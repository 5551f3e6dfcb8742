package main

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/delivery/http/routers"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/drivers/logger"
	"hospital-service/internal/app/drivers/messaging"
	"hospital-service/internal/app/drivers/storage"
	"hospital-service/internal/app/services/core/appointments"
	"hospital-service/internal/app/services/core/doctors"
	"hospital-service/internal/app/services/core/patients"
	"hospital-service/internal/app/services/core/payments"
	"hospital-service/internal/app/services/core/transactions"
	"hospital-service/internal/app/services/shared/callbackaudit"
	"hospital-service/internal/app/services/shared/eventqueue"
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/app/services/shared/locker"
	"hospital-service/internal/app/services/shared/payment_gateway"
	"hospital-service/internal/app/services/shared/ratelimiter"
	"hospital-service/internal/app/services/shared/redis"
	storageService "hospital-service/internal/app/services/shared/storage"
	"hospital-service/internal/app/services/shared/transactor"
	"hospital-service/internal/migration"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	time.Local = utils.LoadLocation(internalConfig.App.Timezone)

	postgresDB := database.NewPostgresDB(driverConfig)
	n, err := migration.Up(postgresDB)
	if err != nil {
		log.Fatal("Error executing migration", zap.Error(err))
	}
	log.Info("Migrations applied", zap.Int("count", n))

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig, internalConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		PostgresDB:     postgresDB,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Minio:          minioClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	err = bootstrapingTheApp(workerCtx, bootstrap)
	if err != nil {
		log.Fatal("Error bootstrapping the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Error closing drivers", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(ctx context.Context, bootstrap *config.Bootstrap) error {
	log := bootstrap.Logger
	cfg := bootstrap.InternalConfig

	// Shared
	sqlTransactor := transactor.NewSQLTransactor(bootstrap.PostgresDB, log)
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	pushLimiter := ratelimiter.NewResourceLimiter(redisRepository, log)
	minioStorage := storageService.NewMinioStorage(bootstrap.Minio)
	paymentGateway := payment_gateway.NewMpesaService(cfg.Mpesa, redisRepository, log)
	eventPublisher, err := eventqueue.NewService(bootstrap.RabbitMQ, log, cfg.Payment.EventsQueue)
	if err != nil {
		return err
	}
	callbackAuditRepository := callbackaudit.NewCallbackAuditMongoRepository(
		bootstrap.MongoDB.Database(bootstrap.DriverConfig.MongoDB.DBName),
		cfg.MongoDB.CallbackAuditCollection,
	)
	jwtManager, err := jwtmanager.NewJWTManager(cfg, log)
	if err != nil {
		return err
	}

	// Repositories
	doctorRepository := doctors.NewDoctorPostgresRepository(sqlTransactor)
	patientRepository := patients.NewPatientPostgresRepository(sqlTransactor)
	appointmentRepository := appointments.NewAppointmentPostgresRepository(sqlTransactor)
	transactionRepository := transactions.NewTransactionPostgresRepository(sqlTransactor)

	// Appointment
	appointmentUsecase := appointments.NewAppointmentUsecase(
		sqlTransactor,
		appointmentRepository,
		doctorRepository,
		patientRepository,
		eventPublisher,
		cfg,
		log,
	)
	appointmentController := controllers.NewAppointmentController(log, appointmentUsecase, cfg)

	// Payment
	paymentReconciler := payments.NewPaymentReconciler(
		sqlTransactor,
		transactionRepository,
		appointmentRepository,
		eventPublisher,
		minioStorage,
		cfg,
		log,
	)
	paymentUsecase := payments.NewPaymentUsecase(
		transactionRepository,
		appointmentRepository,
		patientRepository,
		callbackAuditRepository,
		paymentGateway,
		paymentReconciler,
		lockService,
		pushLimiter,
		minioStorage,
		cfg,
		log,
	)
	paymentController := controllers.NewPaymentController(log, paymentUsecase, cfg)

	reconcileWorker := payments.NewWorker(log, cfg, lockService, paymentUsecase)
	reconcileWorker.Start(ctx)
	bootstrap.WorkerStop = reconcileWorker.Stop

	middlewares := middlewares.NewMiddlewares(log, jwtManager, cfg)
	healthController := controllers.NewHealthController()

	routers.SetupRoutes(
		bootstrap.Router,
		cfg,
		middlewares,
		appointmentController,
		paymentController,
		healthController,
	)
	return nil
}
