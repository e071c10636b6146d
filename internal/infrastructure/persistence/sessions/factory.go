package sessions

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AtRiskMedia/ussd-go/internal/domain/repositories"
)

// Driver names accepted by NewStore.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Options carries the driver selection and the Redis settings used when the
// redis driver is chosen.
type Options struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// NewStore builds the configured session store driver.
func NewStore(opts Options) (repositories.SessionStore, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(client, opts.RedisTTL), nil
	default:
		return nil, fmt.Errorf("unknown session store driver %q", opts.Driver)
	}
}
