package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/metrics"
)

const maxBackoff = 30 * time.Second

type ResilienceOptions struct {
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerMinute int
	Breaker           config.BreakerConfig
}

// resilientService guards a provider with an outbound rate limit, a circuit
// breaker and retries for transient failures. It is safe for concurrent use.
type resilientService struct {
	next       LLMService
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[any]
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func NewResilientService(next LLMService, opts ResilienceOptions, logger *zap.Logger) LLMService {
	r := &resilientService{
		next:       next,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		logger:     logger.With(zap.String("provider", next.Name())),
	}
	if r.baseDelay <= 0 {
		r.baseDelay = time.Second
	}

	if opts.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(opts.RequestsPerMinute) / 60)
		r.limiter = rate.NewLimiter(perSecond, max(1, opts.RequestsPerMinute/6))
	}

	if opts.Breaker.Enabled {
		r.breaker = newBreaker(next.Name(), opts.Breaker, r.logger)
	}

	return r
}

func newBreaker(provider string, cfg config.BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[any] {
	name := fmt.Sprintf("llm-%s", provider)
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("⚠️ Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return !isProviderFault(err)
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

func (r *resilientService) Name() string {
	return r.next.Name()
}

// Complete implements LLMService.
func (r *resilientService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	out, err := r.call(ctx, req.Operation, func(ctx context.Context) (any, error) {
		return r.next.Complete(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Embed implements LLMService.
func (r *resilientService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := r.call(ctx, OperationEmbed, func(ctx context.Context) (any, error) {
		return r.next.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

func (r *resilientService) call(ctx context.Context, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	provider := r.next.Name()
	ctx, span := otel.Tracer("resume-ranker/llm").Start(ctx, "llm."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.operation", operation),
	)

	start := time.Now()
	out, err := r.executeWithBreaker(func() (any, error) {
		return r.executeWithRetry(ctx, operation, fn)
	})
	metrics.ModelCallDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ModelCallsTotal.WithLabelValues(provider, operation, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewModelCallError(apperrors.ErrCodeModelUnavailable,
				fmt.Sprintf("%s model API is temporarily unavailable", provider), err)
		}
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeModelCallFailed,
			fmt.Sprintf("%s request to %s failed", operation, provider), err)
	}

	metrics.ModelCallsTotal.WithLabelValues(provider, operation, "success").Inc()
	return out, nil
}

func (r *resilientService) executeWithBreaker(fn func() (any, error)) (any, error) {
	if r.breaker == nil {
		return fn()
	}
	return r.breaker.Execute(fn)
}

// executeWithRetry runs fn up to MaxRetries+1 times with exponential backoff
// and jitter, stopping early on errors that a retry cannot fix.
func (r *resilientService) executeWithRetry(ctx context.Context, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.ModelCallRetries.WithLabelValues(r.next.Name(), operation).Inc()
			r.logger.Warn("⚠️ Retrying model call",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", r.maxRetries),
				zap.Error(lastErr))

			select {
			case <-time.After(r.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		out, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("✅ Model call succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return out, nil
		}

		lastErr = err
		if ctx.Err() != nil || !isRetryableError(err) {
			r.logger.Debug("Model call error is not retryable",
				zap.String("operation", operation),
				zap.Error(err))
			break
		}
	}

	r.logger.Error("❌ Model call failed",
		zap.String("operation", operation),
		zap.Error(lastErr))
	return nil, lastErr
}

func (r *resilientService) backoff(attempt int) time.Duration {
	base := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt-1)))
	jitter := time.Duration(rand.Int64N(int64(base)/10 + 1))
	return min(base+jitter, maxBackoff)
}

// isProviderFault reports whether err says something about the provider's
// health. Rejections of a single prompt (4xx other than 429) and the
// caller's own cancellation or deadline are not held against it.
func isProviderFault(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return isRetryableError(err)
}

// isRetryableError reports whether a failed model call may succeed when
// repeated: network failures, 429 and 5xx answers.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
