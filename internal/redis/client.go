// Package redis stores session upgrade history and stat counters in Redis.
package redis

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis the stores need. Satisfied by single
// node, cluster and failover clients.
type Client interface {
	redis.UniversalClient
}

// Options configures client behavior.
type Options struct {
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
}

// NewClient creates a client for a single instance. Connections are lazy.
func NewClient(addr string, opts *Options) (Client, error) {
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	return redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        opts.Password,
		DB:              opts.DB,
		PoolSize:        opts.PoolSize,
		MinIdleConns:    opts.MinIdleConns,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
	}), nil
}

const keyPrefix = "skillcore:"

func upgradesKey(sessionID string) string { return keyPrefix + "upgrades:" + sessionID }

func statsKey(sessionID string) string { return keyPrefix + "stats:" + sessionID }
