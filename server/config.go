package server

import (
	"os"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvAddr      = "KNIGHTS_ADDR"
	EnvHTTPAddr  = "KNIGHTS_HTTP_ADDR"
	EnvLogFile   = "KNIGHTS_LOG_FILE"
	EnvLogLevel  = "KNIGHTS_LOG_LEVEL"
	EnvLogStderr = "KNIGHTS_LOG_STDERR"
)

const (
	DefaultAddr     = "127.0.0.1:31337"
	DefaultHTTPAddr = ":8080"
	DefaultLogLevel = "info"
)

// Config 服务端配置。HTTPAddr 为空时不启动 WebSocket 与管理接口
type Config struct {
	Addr      string `validate:"required,hostname_port"`
	HTTPAddr  string `validate:"omitempty,hostname_port"`
	LogFile   string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogStderr bool
}

var validate = validator.New()

// DefaultConfig 默认配置，日志写到 XDG state 目录
func DefaultConfig() *Config {
	return &Config{
		Addr:     DefaultAddr,
		HTTPAddr: DefaultHTTPAddr,
		LogFile:  defaultLogFile(),
		LogLevel: DefaultLogLevel,
	}
}

func defaultLogFile() string {
	path, err := xdg.StateFile("knightarena/server.log")
	if err != nil {
		return "knightarena.log"
	}
	return path
}

// LoadConfig 读取 .env（可选）与环境变量，覆盖默认值
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v, ok := os.LookupEnv(EnvAddr); ok {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogStderr); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		cfg.LogStderr = b
	}
	return cfg, nil
}

// Validate 校验字段格式
func (c *Config) Validate() error {
	return validate.Struct(c)
}
