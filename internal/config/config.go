package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	API      APIConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// GatewayConfig is the configuration-object half of credential resolution.
// The GATEWAY_* environment variables override these values inside the
// provider itself, so a container-injected secret always wins.
type GatewayConfig struct {
	AppID     string
	SecretKey string
	Sandbox   bool
}

type APIConfig struct {
	Key string
}

// ReconcileConfig controls the pending-session status poller.
type ReconcileConfig struct {
	Schedule  string
	BatchSize int
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GATEWAY_SANDBOX", false)

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			AppID:     viper.GetString("GATEWAY_APP_ID"),
			SecretKey: viper.GetString("GATEWAY_SECRET_KEY"),
			Sandbox:   viper.GetBool("GATEWAY_SANDBOX"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}

	return cfg, nil
}

// Reconcile returns the poller settings with defaults applied.
func (c *Config) Reconcile() ReconcileConfig {
	schedule := viper.GetString("RECONCILE_SCHEDULE")
	if schedule == "" {
		schedule = "@every 2m"
	}
	batch := viper.GetInt("RECONCILE_BATCH_SIZE")
	if batch <= 0 {
		batch = 100
	}
	return ReconcileConfig{Schedule: schedule, BatchSize: batch}
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

// LoadDatabaseOnly loads just the database section, for migration runs.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}
