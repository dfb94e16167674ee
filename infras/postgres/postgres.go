package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"time"

	"guesthouse/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute

	defaultSessionTimezone = "UTC"
)

// Connection splits reads from writes; reports and lists go to Read,
// everything inside a transaction goes to Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one side of the read/write pair.
type Endpoint struct {
	Role     string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Timezone string
	SSLMode  string
}

// DSN renders the endpoint as a postgres URL. Sessions default to UTC so
// TIMESTAMPTZ values round-trip without a local offset.
func (e Endpoint) DSN() string {
	query := url.Values{}
	if e.SSLMode != "" {
		query.Set("sslmode", e.SSLMode)
	}

	timezone := e.Timezone
	if timezone == "" {
		timezone = defaultSessionTimezone
	}

	query.Set("timezone", timezone)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func ReadEndpoint(config *config.Config) Endpoint {
	pg := config.DB.Postgres

	return Endpoint{
		Role:     "read",
		Host:     pg.Read.Host,
		Port:     pg.Read.Port,
		Username: pg.Read.Username,
		Password: pg.Read.Password,
		Name:     pg.Prefix + pg.Read.Name,
		Timezone: pg.Read.Timezone,
		SSLMode:  pg.Read.SSLMode,
	}
}

func WriteEndpoint(config *config.Config) Endpoint {
	pg := config.DB.Postgres

	return Endpoint{
		Role:     "write",
		Host:     pg.Write.Host,
		Port:     pg.Write.Port,
		Username: pg.Write.Username,
		Password: pg.Write.Password,
		Name:     pg.Prefix + pg.Write.Name,
		Timezone: pg.Write.Timezone,
		SSLMode:  pg.Write.SSLMode,
	}
}

func New(config *config.Config) *Connection {
	retries := config.DB.Postgres.MaxRetry
	wait := time.Duration(config.DB.Postgres.RetryWaitTime) * time.Second

	return &Connection{
		Read:  Connect(ReadEndpoint(config), retries, wait),
		Write: Connect(WriteEndpoint(config), retries, wait),
	}
}

// Connect dials the endpoint, retrying maxRetry times. Running out of retries is fatal.
func Connect(endpoint Endpoint, maxRetry int, wait time.Duration) *sqlx.DB {
	maxRetry = max(maxRetry, 1)

	for attempt := 1; attempt <= maxRetry; attempt++ {
		db, err := sqlx.Connect("postgres", endpoint.DSN())
		if err == nil {
			db.SetMaxIdleConns(postgresMaxIdleConnection)
			db.SetMaxOpenConns(postgresMaxOpenConnection)
			db.SetConnMaxLifetime(postgresConnMaxLifetime)

			log.Info().
				Str("name", endpoint.Role).
				Str("host", endpoint.Host).
				Str("port", endpoint.Port).
				Str("dbName", endpoint.Name).
				Msg("Connected to database")

			return db
		}

		log.Error().
			Err(err).
			Str("name", endpoint.Role).
			Str("host", endpoint.Host).
			Str("dbName", endpoint.Name).
			Int("attempt", attempt).
			Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	log.Fatal().Str("name", endpoint.Role).Str("host", endpoint.Host).Msg("Giving up connecting to database")

	return nil
}
