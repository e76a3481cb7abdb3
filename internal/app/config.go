package app

import (
	"github.com/yungbote/outloud-backend/internal/platform/envutil"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	Port        string
	JWTSecret   string
}

func LoadConfig() Config {
	return Config{
		ServiceName: envutil.Get("SERVICE_NAME", "outloud-backend"),
		Environment: envutil.Get("ENVIRONMENT", "development"),
		Version:     envutil.Get("SERVICE_VERSION", "dev"),
		Port:        envutil.Get("PORT", "3001"),
		JWTSecret:   envutil.Get("JWT_SECRET", ""),
	}
}
