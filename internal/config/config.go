package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DBDriver    string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string
	LogLevel    string
	CORSOrigin  string

	// TMDB 元数据
	TMDBToken    string
	TMDBAPIKey   string
	TMDBBaseURL  string
	TMDBCacheTTL time.Duration

	// IndexSyncInterval 全文索引与数据库的同步间隔，0 表示关闭
	IndexSyncInterval time.Duration

	// ContentWriteOpen 为 true 时 POST /content 不做管理员校验（便于导入数据）
	ContentWriteOpen bool
}

// Load 加载配置，显式传入的命令行参数优先，其次是环境变量，最后是默认值
func Load(flags *pflag.FlagSet) *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_EXPIRY_HOURS", 72)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "streambox")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "streambox.db")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_CACHE_MINUTES", 60)
	v.SetDefault("CONTENT_WRITE_OPEN", false)
	v.SetDefault("INDEX_SYNC_MINUTES", 10)

	if flags != nil {
		bind(v, flags, "PORT", "port")
		bind(v, flags, "DB_DRIVER", "db-driver")
		bind(v, flags, "LOG_LEVEL", "log-level")
	}

	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		if driver == "sqlite" {
			dbURL = v.GetString("DB_PATH")
		} else {
			dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				v.GetString("DB_USER"), v.GetString("DB_PASSWORD"), v.GetString("DB_HOST"),
				v.GetString("DB_PORT"), v.GetString("DB_NAME"), v.GetString("DB_SSLMODE"))
		}
	}

	appSecret := v.GetString("APP_SECRET")
	if appSecret == "" {
		appSecret = v.GetString("JWT_SECRET")
	}
	if appSecret == "" {
		appSecret = defaultSecret
	}

	return &Config{
		Env:              v.GetString("APP_ENV"),
		AppSecret:        appSecret,
		DBDriver:         driver,
		DatabaseURL:      dbURL,
		JWTExpiry:        time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		Port:             v.GetString("PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		CORSOrigin:       v.GetString("CORS_ORIGIN"),
		TMDBToken:        v.GetString("TMDB_TOKEN"),
		TMDBAPIKey:       v.GetString("TMDB_API_KEY"),
		TMDBBaseURL:      strings.TrimRight(v.GetString("TMDB_BASE_URL"), "/"),
		TMDBCacheTTL:     time.Duration(v.GetInt("TMDB_CACHE_MINUTES")) * time.Minute,
		ContentWriteOpen: v.GetBool("CONTENT_WRITE_OPEN"),

		IndexSyncInterval: time.Duration(v.GetInt("INDEX_SYNC_MINUTES")) * time.Minute,
	}
}

// UsesDefaultSecret 是否仍在使用默认密钥
func (c *Config) UsesDefaultSecret() bool {
	return c.AppSecret == defaultSecret
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// bind 仅在命令行显式传入时覆盖，避免 flag 默认值盖掉环境变量
func bind(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	f := flags.Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	v.Set(key, f.Value.String())
}
