package config

import (
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Host:     utils.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:     utils.GetEnvString("POSTGRES_PORT", "5432"),
			Username: utils.GetEnvString("POSTGRES_USERNAME", "postgres"),
			Password: utils.GetEnvString("POSTGRES_PASSWORD", "postgres"),
			DBName:   utils.GetEnvString("POSTGRES_DB_NAME", "hospital"),
			SSLMode:  utils.GetEnvString("POSTGRES_SSL_MODE", "disable"),
			MaxOpen:  utils.GetEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdle:  utils.GetEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
			DBName:   utils.GetEnvString("MONGODB_DB_NAME", "hospital"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
			MaxSizeInMegabyte:   utils.GetEnvInt("LOGGER_MAX_SIZE_IN_MEGABYTE", 100),
			MaxBackups:          utils.GetEnvInt("LOGGER_MAX_BACKUPS", 7),
			MaxAgeInDays:        utils.GetEnvInt("LOGGER_MAX_AGE_IN_DAYS", 28),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "Africa/Nairobi"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 20),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 30),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 1),
		},
		JWT: AppJWT{
			Secret: utils.GetEnvString("JWT_SECRET", "anyjwt"),
		},
		Mpesa: AppMpesa{
			Environment:       utils.GetEnvString("MPESA_ENVIRONMENT", constvars.MpesaEnvSandbox),
			BaseUrl:           utils.GetEnvString("MPESA_BASE_URL", ""),
			ConsumerKey:       utils.GetEnvString("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret:    utils.GetEnvString("MPESA_CONSUMER_SECRET", ""),
			Passkey:           utils.GetEnvString("MPESA_PASSKEY", ""),
			Shortcode:         utils.GetEnvString("MPESA_SHORTCODE", constvars.MpesaDefaultShortcode),
			CallbackURL:       utils.GetEnvString("MPESA_CALLBACK_URL", ""),
			TransactionDesc:   utils.GetEnvString("MPESA_TRANSACTION_DESC", constvars.MpesaDefaultTransactionDesc),
			RequestTimeout:    utils.GetEnvDuration("MPESA_REQUEST_TIMEOUT", 30*time.Second),
			RequestsPerSecond: utils.GetEnvFloat("MPESA_REQUESTS_PER_SECOND", 5),
			TokenExpiryMargin: utils.GetEnvDuration("MPESA_TOKEN_EXPIRY_MARGIN", time.Minute),
		},
		Payment: AppPayment{
			ReconcileCronSpec:             utils.GetEnvString("PAYMENT_RECONCILE_CRON_SPEC", "@every 1m"),
			ReconcileStaleAfter:           utils.GetEnvDuration("PAYMENT_RECONCILE_STALE_AFTER", 2*time.Minute),
			ReconcileBatchSize:            utils.GetEnvInt("PAYMENT_RECONCILE_BATCH_SIZE", 50),
			ReconcileLeaderLockTTL:        utils.GetEnvDuration("PAYMENT_RECONCILE_LEADER_LOCK_TTL", 2*time.Minute),
			StatusQueryLockTTL:            utils.GetEnvDuration("PAYMENT_STATUS_QUERY_LOCK_TTL", 15*time.Second),
			ReceiptBucketName:             utils.GetEnvString("PAYMENT_RECEIPT_BUCKET_NAME", "payment-receipts"),
			ReceiptPresignExpiryInMinutes: utils.GetEnvInt("PAYMENT_RECEIPT_PRESIGN_EXPIRY_IN_MINUTES", 15),
			EventsQueue:                   utils.GetEnvString("PAYMENT_EVENTS_QUEUE", "hospital.payment.events"),
			MaxPushesPerWindow:            utils.GetEnvInt("PAYMENT_MAX_PUSHES_PER_WINDOW", 3),
			PushWindow:                    utils.GetEnvDuration("PAYMENT_PUSH_WINDOW", 5*time.Minute),
		},
		Booking: AppBooking{
			SlotGranularityInMinutes: utils.GetEnvInt("BOOKING_SLOT_GRANULARITY_IN_MINUTES", constvars.SlotGranularityInMinutes),
		},
		MongoDB: AppMongoDB{
			CallbackAuditCollection: utils.GetEnvString("MONGODB_CALLBACK_AUDIT_COLLECTION", "mpesa_callbacks"),
		},
	}
}
