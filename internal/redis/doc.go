// Package redis wraps the go-redis client with connection setup and the
// metrics and circuit-breaker hooks shared by every Redis consumer.
package redis
