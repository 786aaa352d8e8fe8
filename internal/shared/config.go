package shared

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" env-default:"prod"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr    string `env:"HTTP_ADDR" env-default:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`

	FlightServiceURL string `env:"FLIGHT_SERVICE_URL" env-default:"http://flight_service:8060"`
	TicketServiceURL string `env:"TICKET_SERVICE_URL" env-default:"http://ticket_service:8070"`
	BonusServiceURL  string `env:"BONUS_SERVICE_URL" env-default:"http://bonus_service:8050"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"15s"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" env-default:"10s"`
	BackendRPS      int           `env:"BACKEND_RPS" env-default:"0"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" env-default:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" env-default:"10s"`

	// empty RedisAddr disables Idempotency-Key handling
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPass      string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" env-default:"0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h"`
}

func Load() (Config, error) {
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if c.RequestTimeout > 0 && c.BackendTimeout > c.RequestTimeout {
		log.Warn().
			Dur("backend_timeout", c.BackendTimeout).
			Dur("request_timeout", c.RequestTimeout).
			Msg("BACKEND_TIMEOUT exceeds REQUEST_TIMEOUT; the request deadline wins")
	}
	return c, nil
}
