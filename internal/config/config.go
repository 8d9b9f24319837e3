package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Game     GameConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath каталог с SQL-миграциями
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster.
// Без адресов Redis не используется: нет блокировок создания игры, кеша и rate limit.
type RedisConfig struct {
	// Mode: "single", "sentinel" или "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт)
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пуст
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: только для режима "sentinel"
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// Enabled true, если задан хотя бы один адрес Redis
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// GameConfig содержит настройки игры
type GameConfig struct {
	TimeLimitMinutes       int `mapstructure:"time_limit_minutes"`
	CreationLockSeconds    int `mapstructure:"creation_lock_seconds"`
	ActiveGameCacheSeconds int `mapstructure:"active_game_cache_seconds"`
	// RateLimitEnabled включает лимиты запросов на auth и игровые действия
	RateLimitEnabled bool `mapstructure:"rate_limit_enabled"`
}

// TimeLimit лимит времени игры
func (g GameConfig) TimeLimit() time.Duration {
	return time.Duration(g.TimeLimitMinutes) * time.Minute
}

// CreationLockTTL время жизни блокировки создания игры
func (g GameConfig) CreationLockTTL() time.Duration {
	return time.Duration(g.CreationLockSeconds) * time.Second
}

// ActiveGameTTL время жизни кеша активной игры
func (g GameConfig) ActiveGameTTL() time.Duration {
	return time.Duration(g.ActiveGameCacheSeconds) * time.Second
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // отдельный экземпляр, без глобального состояния

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("game.time_limit_minutes", 35)
	vip.SetDefault("game.creation_lock_seconds", 10)
	vip.SetDefault("game.active_game_cache_seconds", 35*60)
	vip.SetDefault("game.rate_limit_enabled", true)

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")

	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	// Привязка для секции Game
	vip.BindEnv("game.time_limit_minutes", "GAME_TIME_LIMIT_MINUTES")
	vip.BindEnv("game.creation_lock_seconds", "GAME_CREATION_LOCK_SECONDS")
	vip.BindEnv("game.active_game_cache_seconds", "GAME_ACTIVE_GAME_CACHE_SECONDS")
	vip.BindEnv("game.rate_limit_enabled", "GAME_RATE_LIMIT_ENABLED")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть, тогда работают переменные окружения и умолчания
		if err := vip.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Enabled: %t (mode: %s)", cfg.Redis.Enabled(), cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Game Time Limit: %d мин", cfg.Game.TimeLimitMinutes)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Game.TimeLimitMinutes <= 0 {
		return fmt.Errorf("game time limit must be positive, got %d", c.Game.TimeLimitMinutes)
	}
	if c.Game.CreationLockSeconds <= 0 || c.Game.ActiveGameCacheSeconds <= 0 {
		return fmt.Errorf("game redis ttl values must be positive")
	}
	if os.Getenv("GIN_MODE") == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}
