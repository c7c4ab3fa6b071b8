package config

import (
	"log"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/sony/gobreaker"
)

const (
	BreakerPostgres = "PostgreSQL"
	BreakerRedis    = "Redis-Cache"
	BreakerRelayDB  = "Relay-PostgreSQL"
	BreakerRabbitMQ = "RabbitMQ-Publisher"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// Not-found, conflict and slot-taken results count as successes.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case BreakerRedis:
		timeout = time.Second * 5 // matches the readiness probe timeout
	case BreakerPostgres, BreakerRelayDB:
		timeout = time.Second * 10
	default:
		timeout = time.Second * 30
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsOutcome(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[CRITICAL] Circuit Breaker %s: %s -> %s", name, from, to)
		},
	})
}
