package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"guesthouse/shared/constant"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		UTCOffsetMinutes int `envconfig:"UTC_OFFSET_MINUTES" default:"180"`
	} `envconfig:"APP"`

	Attendance struct {
		ScannerKey string `envconfig:"SCANNER_KEY"`
	} `envconfig:"ATTENDANCE"`

	Stats struct {
		CacheTTL     int    `envconfig:"CACHE_TTL"     default:"30"`
		ExportFolder string `envconfig:"EXPORT_FOLDER" default:"reports"`
	} `envconfig:"STATS"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"  default:"15"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int        `envconfig:"MAX_RETRY"       default:"5"`
			RetryWaitTime  int        `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string     `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
			AutoMigrate    bool       `envconfig:"AUTO_MIGRATE"`
			Prefix         string     `envconfig:"PREFIX"`
			Read           DBEndpoint `envconfig:"READ"`
			Write          DBEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		Topic         string   `envconfig:"TOPIC"          default:"guesthouse.events"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	AMQP struct {
		URL      string `envconfig:"URL"`
		Exchange string `envconfig:"EXCHANGE" default:"guesthouse"`
		Queue    string `envconfig:"QUEUE"    default:"inventory.low_stock"`
	} `envconfig:"AMQP"`

	MQTT struct {
		Enable   bool   `envconfig:"ENABLE"`
		Broker   string `envconfig:"BROKER"`
		ClientID string `envconfig:"CLIENT_ID" default:"guesthouse-worker"`
		Username string `envconfig:"USERNAME"`
		Password string `envconfig:"PASSWORD"`
		Topic    string `envconfig:"TOPIC"     default:"guesthouse/attendance/scan"`
	} `envconfig:"MQTT"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

// DBEndpoint is one side of the read/write Postgres pair.
type DBEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

var (
	conf    Config
	once    sync.Once
	initErr error
)

// Init loads .env when present and then the process environment. It runs once;
// later calls return the first outcome.
func Init() error {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Debug().Err(err).Msg("No .env file loaded, using the process environment")
		}

		if err := envconfig.Process("", &conf); err != nil {
			initErr = fmt.Errorf("processing environment: %w", err)

			return
		}

		initErr = conf.Validate()
	})

	return initErr
}

// Validate rejects settings the service cannot run safely with in production.
func (c *Config) Validate() error {
	if c.Server.Env != constant.ServerEnvProduction {
		return nil
	}

	var missing []string

	if c.JWT.AccessSecret == "" {
		missing = append(missing, "JWT_ACCESS_SECRET")
	}

	if c.JWT.RefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}

	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT access and refresh secrets must differ")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return &conf
}
