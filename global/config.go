package global

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/jjt256723/couple-space-app/logger"
)

// AppConfig 全局配置：从环境变量加载（支持 .env 文件）
type AppConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// MongoURI 为空时不启用会话落库
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"couple_space"`

	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`
	RefreshTokenDays   int    `envconfig:"REFRESH_TOKEN_EXPIRE_DAYS" default:"7"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`

	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Debug       bool   `envconfig:"DEBUG" default:"true"`
}

var (
	cfg     AppConfig
	cfgOnce sync.Once
)

// Config 惰性加载单例。启动时在 main 里先调用一次，加载失败直接 panic。
func Config() *AppConfig {
	cfgOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.Debugf("no .env file loaded: %v", err)
		}
		if err := envconfig.Process("", &cfg); err != nil {
			panic("load config: " + err.Error())
		}
	})
	return &cfg
}

func GetJwtSecret() []byte {
	return []byte(Config().JWTSecret)
}
