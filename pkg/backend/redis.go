package backend

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// RedisConfig holds connection settings for the go-redis adapter.
type RedisConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// RedisExecutor runs commands through a go-redis client.
type RedisExecutor struct {
	client  redis.UniversalClient
	retry   errors.RetryConfig
	breaker *errors.CircuitBreaker
	logger  *slog.Logger
	owned   bool
}

// RedisOption configures a RedisExecutor.
type RedisOption func(*RedisExecutor)

// WithRetry sets the retry policy for transport failures.
func WithRetry(cfg errors.RetryConfig) RedisOption {
	return func(e *RedisExecutor) {
		if cfg.RetryIf == nil {
			cfg.RetryIf = errors.IsRetryable
		}
		e.retry = cfg
	}
}

// WithCircuitBreaker fails commands fast while the breaker is open.
func WithCircuitBreaker(cb *errors.CircuitBreaker) RedisOption {
	return func(e *RedisExecutor) {
		e.breaker = cb
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) RedisOption {
	return func(e *RedisExecutor) {
		e.logger = l
	}
}

// NewRedisExecutor dials lazily using cfg. The client speaks RESP2 and never
// retries on its own; WithRetry is the only retry policy.
// Close releases the connection pool.
func NewRedisExecutor(cfg RedisConfig, opts ...RedisOption) *RedisExecutor {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Protocol:     2,
		MaxRetries:   -1,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})
	e := NewRedisExecutorFromClient(client, opts...)
	e.owned = true
	return e
}

// NewRedisExecutorFromClient wraps an existing client. The caller keeps ownership of it.
func NewRedisExecutorFromClient(client redis.UniversalClient, opts ...RedisOption) *RedisExecutor {
	e := &RedisExecutor{
		client: client,
		retry:  errors.NoRetry(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do sends command with args and returns the raw RESP2 reply.
func (e *RedisExecutor) Do(ctx context.Context, command string, args ...string) (any, error) {
	cmdArgs := make([]any, 0, len(args)+1)
	cmdArgs = append(cmdArgs, command)
	for _, a := range args {
		cmdArgs = append(cmdArgs, a)
	}

	attempt := 0
	run := func() (any, error) {
		attempt++
		if attempt > 1 {
			e.logger.Debug("retrying backend command", slog.String("command", command), slog.Int("attempt", attempt))
		}
		v, err := e.client.Do(ctx, cmdArgs...).Result()
		if stderrors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, Classify(command, err)
		}
		return v, nil
	}

	call := run
	if e.breaker != nil {
		call = func() (any, error) {
			return errors.CircuitExecute(e.breaker, run)
		}
	}
	return errors.RetryWithResult(ctx, e.retry, call)
}

// Ping checks connectivity.
func (e *RedisExecutor) Ping(ctx context.Context) error {
	_, err := e.Do(ctx, "PING")
	return err
}

// Close closes the client if this executor created it.
func (e *RedisExecutor) Close() error {
	if !e.owned {
		return nil
	}
	return e.client.Close()
}
