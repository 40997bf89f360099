package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/quantum-builds/VinAudit/storage"
)

// Keys resolved from the environment, .env and command-line flags.
const (
	KeyDBDriver         = "db_driver"
	KeyPostgresHost     = "postgres_host"
	KeyPostgresPort     = "postgres_port"
	KeyPostgresUser     = "postgres_user"
	KeyPostgresPassword = "postgres_password"
	KeyPostgresDB       = "postgres_db"
	KeyPostgresSSLMode  = "postgres_sslmode"
	KeySQLitePath       = "sqlite_path"
	KeyConnectAttempts  = "db_connect_attempts"
	KeyWorkers          = "ingest_workers"
	KeyChunkSize        = "ingest_chunk_size"
	KeyProgressInterval = "progress_interval"
	KeyErrorDetailLimit = "error_detail_limit"
	KeyRejectsPath      = "rejects_path"
	KeySampleLimit      = "sample_limit"
	KeyMetricsAddr      = "metrics_addr"
	KeyLogMode          = "log_mode"
)

// Config holds all application configuration.
type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SQLitePath      string
	ConnectAttempts int

	Workers          int
	ChunkSize        int
	ProgressInterval int
	ErrorDetailLimit int
	RejectsPath      string

	SampleLimit int
	MetricsAddr string
	LogMode     string

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// NewViper returns a viper instance with every key's default set and
// environment lookup enabled (KEY_NAME for key_name).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDBDriver, storage.DriverPostgres)
	v.SetDefault(KeyPostgresHost, "localhost")
	v.SetDefault(KeyPostgresPort, "5432")
	v.SetDefault(KeyPostgresUser, "vinaudit")
	v.SetDefault(KeyPostgresPassword, "vinaudit")
	v.SetDefault(KeyPostgresDB, "vinaudit")
	v.SetDefault(KeyPostgresSSLMode, "disable")
	v.SetDefault(KeySQLitePath, "./data/vinaudit.db")
	v.SetDefault(KeyConnectAttempts, 10)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyChunkSize, 1000)
	v.SetDefault(KeyProgressInterval, 1000)
	v.SetDefault(KeyErrorDetailLimit, 10)
	v.SetDefault(KeyRejectsPath, "")
	v.SetDefault(KeySampleLimit, 100)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyLogMode, "dev")
	v.AutomaticEnv()
	return v
}

// Load reads the .env file, if any, and resolves a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		Driver: strings.ToLower(v.GetString(KeyDBDriver)),

		PostgresHost:     v.GetString(KeyPostgresHost),
		PostgresPort:     v.GetString(KeyPostgresPort),
		PostgresUser:     v.GetString(KeyPostgresUser),
		PostgresPassword: v.GetString(KeyPostgresPassword),
		PostgresDB:       v.GetString(KeyPostgresDB),
		PostgresSSLMode:  v.GetString(KeyPostgresSSLMode),

		SQLitePath:      v.GetString(KeySQLitePath),
		ConnectAttempts: v.GetInt(KeyConnectAttempts),

		Workers:          v.GetInt(KeyWorkers),
		ChunkSize:        v.GetInt(KeyChunkSize),
		ProgressInterval: v.GetInt(KeyProgressInterval),
		ErrorDetailLimit: v.GetInt(KeyErrorDetailLimit),
		RejectsPath:      v.GetString(KeyRejectsPath),

		SampleLimit: v.GetInt(KeySampleLimit),
		MetricsAddr: v.GetString(KeyMetricsAddr),
		LogMode:     v.GetString(KeyLogMode),

		EnvFileLoaded: loaded,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default away.
func (c *Config) Validate() error {
	switch c.Driver {
	case storage.DriverPostgres, storage.DriverSQLite:
	default:
		return fmt.Errorf("config: %s must be %q or %q, got %q",
			strings.ToUpper(KeyDBDriver), storage.DriverPostgres, storage.DriverSQLite, c.Driver)
	}
	if c.Driver == storage.DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("config: %s is required for the sqlite driver", strings.ToUpper(KeySQLitePath))
	}
	for key, n := range map[string]int{
		KeyWorkers:          c.Workers,
		KeyChunkSize:        c.ChunkSize,
		KeyProgressInterval: c.ProgressInterval,
		KeyErrorDetailLimit: c.ErrorDetailLimit,
		KeySampleLimit:      c.SampleLimit,
		KeyConnectAttempts:  c.ConnectAttempts,
	} {
		if n < 1 {
			return fmt.Errorf("config: %s must be at least 1, got %d", strings.ToUpper(key), n)
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// StorageOptions returns the options for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	opts := storage.Options{Driver: c.Driver, ConnectAttempts: c.ConnectAttempts}
	if c.Driver == storage.DriverSQLite {
		opts.DSN = storage.SQLiteDSN(c.SQLitePath)
	} else {
		opts.DSN = c.DSN()
	}
	return opts
}
