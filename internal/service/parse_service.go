package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"medparse/internal/config"
	"medparse/internal/domain"
	"medparse/internal/parser"
	"medparse/internal/port"
)

// ParseService orchestrates extraction calls for single descriptors and
// batches. Batch outcomes are index-aligned with the input and no item's
// failure aborts its siblings.
type ParseService interface {
	ParseOne(ctx context.Context, med domain.Medicine) domain.ParseOutcome
	ParseBatch(ctx context.Context, meds []domain.Medicine) (domain.BatchResult, error)
}

type parseService struct {
	parser      port.MedicineParser
	pacer       *rate.Limiter
	maxSize     int
	concurrency int
	maxRetries  int
	itemTimeout time.Duration
	backoffBase time.Duration
	logger      *zap.Logger
}

// NewParseService creates a ParseService. The pacer throttles outbound calls
// to the extraction provider across all items of a batch.
func NewParseService(medParser port.MedicineParser, cfg config.BatchConfig, logger *zap.Logger) ParseService {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	rps := cfg.UpstreamRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.UpstreamBurst
	if burst <= 0 {
		burst = 1
	}
	itemTimeout := time.Duration(cfg.ItemTimeoutSecs) * time.Second
	if itemTimeout <= 0 {
		itemTimeout = 30 * time.Second
	}
	backoffBase := time.Duration(cfg.BackoffBaseMS) * time.Millisecond
	if backoffBase <= 0 {
		backoffBase = 250 * time.Millisecond
	}
	return &parseService{
		parser:      medParser,
		pacer:       rate.NewLimiter(rate.Limit(rps), burst),
		maxSize:     cfg.MaxSize,
		concurrency: concurrency,
		maxRetries:  cfg.MaxRetries,
		itemTimeout: itemTimeout,
		backoffBase: backoffBase,
		logger:      logger,
	}
}

func (s *parseService) ParseBatch(ctx context.Context, meds []domain.Medicine) (domain.BatchResult, error) {
	if len(meds) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if s.maxSize > 0 && len(meds) > s.maxSize {
		return nil, domain.ErrBatchTooLarge
	}

	// Pre-sized so each goroutine writes its own index; completion order
	// never reorders results.
	results := make(domain.BatchResult, len(meds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, med := range meds {
		i, med := i, med
		g.Go(func() error {
			results[i] = s.parseOne(gctx, med)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per item.
	_ = g.Wait()

	return results, nil
}

func (s *parseService) ParseOne(ctx context.Context, med domain.Medicine) domain.ParseOutcome {
	return s.parseOne(ctx, med)
}

func (s *parseService) parseOne(ctx context.Context, med domain.Medicine) domain.ParseOutcome {
	outcome := domain.ParseOutcome{VPID: med.VPID, OriginalName: med.Name}

	for attempt := 0; ; attempt++ {
		if err := s.pacer.Wait(ctx); err != nil {
			outcome.Error = itemError(domain.ErrorKindTimeout, err)
			return outcome
		}

		itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
		fields, err := s.parser.Extract(itemCtx, med.Name)
		cancel()

		if err == nil {
			outcome.Fields = fields
			return outcome
		}

		kind := classify(err)
		if kind == domain.ErrorKindUpstreamUnavailable && attempt < s.maxRetries {
			wait := s.backoffBase << attempt
			s.logger.Warn("extraction unavailable, retrying",
				zap.String("vpid", med.VPID),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
			if !sleep(ctx, wait) {
				outcome.Error = itemError(domain.ErrorKindTimeout, ctx.Err())
				return outcome
			}
			continue
		}

		s.logger.Warn("extraction failed",
			zap.String("vpid", med.VPID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		outcome.Error = itemError(kind, err)
		return outcome
	}
}

// classify maps an extraction error to its per-item failure kind. Timeouts
// and deterministic bad responses are terminal; only unavailability is
// retry-eligible.
func classify(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.ErrorKindTimeout
	default:
		var invalidErr *parser.InvalidResponseError
		if errors.As(err, &invalidErr) {
			return domain.ErrorKindUpstreamInvalid
		}
		return domain.ErrorKindUpstreamUnavailable
	}
}

func itemError(kind domain.ErrorKind, err error) *domain.ItemError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &domain.ItemError{Kind: kind, Message: msg}
}

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
