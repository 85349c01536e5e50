package config

import (
	"fmt"
	"strings"
	"time"

	"codeshin_backend/internal/recommend"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	AI        AIConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Log       LogConfig       `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type LogConfig struct {
	// File 滚动日志文件路径
	File string `mapstructure:"file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// AIConfig 评测服务（OpenAI 兼容接口）配置，APIKey 为空时使用静态评测器
type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	// Driver 为 mysql 或 sqlite，sqlite 时 DBName 为文件路径
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// CacheTTL 题目目录缓存时间
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RecommendConfig 推荐引擎参数，支持热更新
type RecommendConfig struct {
	WindowSize       int       `mapstructure:"window_size"`
	SimilarThreshold int       `mapstructure:"similar_threshold"`
	MaxResults       int       `mapstructure:"max_results"`
	ScoreScale       float64   `mapstructure:"score_scale"`
	MasteryScale     float64   `mapstructure:"mastery_scale"`
	DecayBase        float64   `mapstructure:"decay_base"`
	Rho              float64   `mapstructure:"rho"`
	Concurrency      int       `mapstructure:"concurrency"`
	DefaultWeights   []float64 `mapstructure:"default_weights"`
	// Timeout 单次推荐的超时时间
	Timeout time.Duration `mapstructure:"timeout"`
}

// Params 转换为引擎参数
func (c RecommendConfig) Params() (recommend.Params, error) {
	p := recommend.Params{
		WindowSize:       c.WindowSize,
		SimilarThreshold: c.SimilarThreshold,
		MaxResults:       c.MaxResults,
		ScoreScale:       c.ScoreScale,
		MasteryScale:     c.MasteryScale,
		DecayBase:        c.DecayBase,
		Rho:              c.Rho,
		Concurrency:      c.Concurrency,
	}
	if len(c.DefaultWeights) != recommend.NumMetrics {
		return p, fmt.Errorf("recommend.default_weights needs %d values, got %d", recommend.NumMetrics, len(c.DefaultWeights))
	}
	copy(p.DefaultWeights[:], c.DefaultWeights)
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("recommend: %w", err)
	}
	return p, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("log.file", "logs/app.log")

	d := recommend.DefaultParams()
	v.SetDefault("recommend.window_size", d.WindowSize)
	v.SetDefault("recommend.similar_threshold", d.SimilarThreshold)
	v.SetDefault("recommend.max_results", d.MaxResults)
	v.SetDefault("recommend.score_scale", d.ScoreScale)
	v.SetDefault("recommend.mastery_scale", d.MasteryScale)
	v.SetDefault("recommend.decay_base", d.DecayBase)
	v.SetDefault("recommend.rho", d.Rho)
	v.SetDefault("recommend.concurrency", d.Concurrency)
	v.SetDefault("recommend.default_weights", d.DefaultWeights[:])
	v.SetDefault("recommend.timeout", 10*time.Second)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// CODESHIN_DATABASE_HOST 对应 database.host，下方 BindEnv 为不带前缀的兼容写法
	v.SetEnvPrefix("CODESHIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowMinutes <= 0 {
		return fmt.Errorf("rate_limit.max_requests and rate_limit.window_minutes must be positive")
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := c.Recommend.Params(); err != nil {
		return err
	}
	return nil
}
