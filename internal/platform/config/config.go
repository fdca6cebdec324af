package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the registry.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string

	// Bootstrap identities granted on startup so a fresh deployment has a
	// working admin before any roles exist.
	BootstrapAdmins []string
}

// PolicyCacheTTL bounds staleness of cached policy reads. Mutations
// invalidate eagerly; the TTL only covers invalidation failures.
var PolicyCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CANOPY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("CANOPY_AUDIT_TOPIC")
	if topic == "" {
		topic = "canopy.audit"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            addr,
		PostgresDSN:     os.Getenv("CANOPY_POSTGRES_DSN"),
		RedisAddr:       os.Getenv("CANOPY_REDIS_ADDR"),
		KafkaBrokers:    splitList(os.Getenv("CANOPY_KAFKA_BROKERS")),
		AuditTopic:      topic,
		JWTSigningKey:   jwtSigningKey,
		BootstrapAdmins: splitList(os.Getenv("CANOPY_BOOTSTRAP_ADMINS")),
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
