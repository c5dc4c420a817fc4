package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"busbooking/internal/utils"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN       string
	JWTSecret   string
	CORSOrigins []string
	Location    *time.Location

	RealtimeSeatURL   string
	PaymentGatewayURL string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LayoutCacheTTL time.Duration

	RefreshInterval      time.Duration
	PollTimeout          time.Duration
	PollFailureThreshold int
	SessionIdle          time.Duration
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads .env when present and falls back to process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	return envFrom(os.Getenv)
}

func envFrom(get func(string) string) Env {
	str := func(key, def string) string {
		if v := strings.TrimSpace(get(key)); v != "" {
			return v
		}
		return def
	}
	num := func(key string, def int) int {
		v := strings.TrimSpace(get(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("warning: invalid %s=%q, using %d", key, v, def)
			return def
		}
		return n
	}

	e := Env{
		AppAddr:              str("APP_ADDR", ":8080"),
		GinMode:              str("GIN_MODE", ""),
		DBDSN:                str("DB_DSN", defaultDSN),
		JWTSecret:            str("JWT_SECRET", ""),
		CORSOrigins:          defaultCORSOrigins,
		RealtimeSeatURL:      strings.TrimRight(str("REALTIME_SEAT_URL", ""), "/"),
		PaymentGatewayURL:    strings.TrimRight(str("PAYMENT_GATEWAY_URL", "http://localhost:3000/payment"), "/"),
		RedisAddr:            str("REDIS_ADDR", ""),
		RedisPassword:        get("REDIS_PASSWORD"),
		RedisDB:              num("REDIS_DB", 0),
		LayoutCacheTTL:       time.Duration(num("LAYOUT_CACHE_TTL_SECONDS", 30)) * time.Second,
		RefreshInterval:      time.Duration(num("REFRESH_INTERVAL_MS", 1000)) * time.Millisecond,
		PollTimeout:          time.Duration(num("POLL_TIMEOUT_SECONDS", 5)) * time.Second,
		PollFailureThreshold: num("POLL_FAILURE_THRESHOLD", 5),
		SessionIdle:          time.Duration(num("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		Location:             time.Local,
	}

	if origins := utils.SplitList(get("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		e.CORSOrigins = origins
	}

	tz := str("APP_TIMEZONE", "Asia/Kolkata")
	if loc, err := time.LoadLocation(tz); err == nil {
		e.Location = loc
	} else {
		log.Printf("warning: unknown APP_TIMEZONE %q, using local time", tz)
	}
	return e
}

// Now returns the wall clock in the configured timezone. Departure and
// arrival times are local to the operator, so the booking window uses this.
func (e Env) Now() time.Time {
	if e.Location == nil {
		return time.Now()
	}
	return time.Now().In(e.Location)
}
