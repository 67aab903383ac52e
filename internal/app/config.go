package app

import (
	"time"

	"github.com/mediccompanion/backend/internal/platform/envutil"
)

type Config struct {
	JWTSecretKey      string
	AccessTokenTTL    time.Duration
	Port              string
	NudgeEmailEnabled bool
}

func LoadConfig() Config {
	return Config{
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:    time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		Port:              envutil.String("PORT", "8080"),
		NudgeEmailEnabled: envutil.Bool("NUDGE_EMAIL_ENABLED", true),
	}
}
