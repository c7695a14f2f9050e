package service_test

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"medparse/internal/config"
	"medparse/internal/domain"
	"medparse/internal/parser"
	"medparse/internal/service"
)

// parserFunc adapts a function to port.MedicineParser.
type parserFunc func(ctx context.Context, name string) (*domain.ParsedFields, error)

func (f parserFunc) Extract(ctx context.Context, name string) (*domain.ParsedFields, error) {
	return f(ctx, name)
}

func testBatchConfig() config.BatchConfig {
	return config.BatchConfig{
		MaxSize:         50,
		Concurrency:     4,
		MaxRetries:      2,
		ItemTimeoutSecs: 5,
		BackoffBaseMS:   1,
		UpstreamRPS:     1000,
		UpstreamBurst:   100,
	}
}

func TestParseBatch_PreservesOrder(t *testing.T) {
	// Completion order is scrambled by making even-indexed items slower.
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		i, _ := strconv.Atoi(name)
		if i%2 == 0 {
			time.Sleep(20 * time.Millisecond)
		}
		return &domain.ParsedFields{Name: name}, nil
	})
	svc := service.NewParseService(p, testBatchConfig(), zap.NewNop())

	meds := make([]domain.Medicine, 20)
	for i := range meds {
		meds[i] = domain.Medicine{Name: strconv.Itoa(i), VPID: "vpid-" + strconv.Itoa(i)}
	}

	result, err := svc.ParseBatch(context.Background(), meds)

	assert.NoError(t, err)
	assert.Len(t, result, len(meds))
	for i := range result {
		assert.Equal(t, meds[i].VPID, result[i].VPID)
		assert.Equal(t, meds[i].Name, result[i].OriginalName)
		assert.True(t, result[i].OK())
		assert.Equal(t, meds[i].Name, result[i].Fields.Name)
	}
	assert.Equal(t, domain.BatchAllSucceeded, result.Status())
}

func TestParseBatch_NoSilentDrop_MixedOutcomes(t *testing.T) {
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		if name == "" {
			return nil, &parser.InvalidResponseError{Provider: "test", Err: fmt.Errorf("empty input rejected")}
		}
		return &domain.ParsedFields{Name: name}, nil
	})
	svc := service.NewParseService(p, testBatchConfig(), zap.NewNop())

	meds := []domain.Medicine{
		{Name: "Paracetamol 500mg", VPID: "1"},
		{Name: "", VPID: "2"},
	}

	result, err := svc.ParseBatch(context.Background(), meds)

	assert.NoError(t, err)
	assert.Len(t, result, 2)

	assert.True(t, result[0].OK())
	assert.Nil(t, result[0].Error)

	assert.False(t, result[1].OK())
	assert.Nil(t, result[1].Fields)
	assert.Equal(t, domain.ErrorKindUpstreamInvalid, result[1].Error.Kind)

	assert.Equal(t, domain.BatchPartial, result.Status())
}

func TestParseBatch_EmptyBatch(t *testing.T) {
	svc := service.NewParseService(parserFunc(nil), testBatchConfig(), zap.NewNop())

	result, err := svc.ParseBatch(context.Background(), nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestParseBatch_BatchTooLarge(t *testing.T) {
	cfg := testBatchConfig()
	cfg.MaxSize = 2
	calls := int32(0)
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		atomic.AddInt32(&calls, 1)
		return &domain.ParsedFields{Name: name}, nil
	})
	svc := service.NewParseService(p, cfg, zap.NewNop())

	meds := []domain.Medicine{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	result, err := svc.ParseBatch(context.Background(), meds)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestParseBatch_RetriesUnavailableExactlyMaxTimes(t *testing.T) {
	cfg := testBatchConfig()
	cfg.MaxRetries = 3
	calls := int32(0)
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &parser.UnavailableError{Provider: "test", Err: fmt.Errorf("connection refused")}
	})
	svc := service.NewParseService(p, cfg, zap.NewNop())

	result, err := svc.ParseBatch(context.Background(), []domain.Medicine{{Name: "Ibuprofen 200mg", VPID: "7"}})

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.False(t, result[0].OK())
	assert.Equal(t, domain.ErrorKindUpstreamUnavailable, result[0].Error.Kind)
	// Initial attempt plus exactly MaxRetries retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestParseBatch_InvalidResponseNotRetried(t *testing.T) {
	calls := int32(0)
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &parser.InvalidResponseError{Provider: "test", Err: fmt.Errorf("garbage payload")}
	})
	svc := service.NewParseService(p, testBatchConfig(), zap.NewNop())

	result, err := svc.ParseBatch(context.Background(), []domain.Medicine{{Name: "x", VPID: "1"}})

	assert.NoError(t, err)
	assert.Equal(t, domain.ErrorKindUpstreamInvalid, result[0].Error.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestParseBatch_TimeoutIsolation(t *testing.T) {
	cfg := testBatchConfig()
	cfg.ItemTimeoutSecs = 1
	calls := int32(0)
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		atomic.AddInt32(&calls, 1)
		if name == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &domain.ParsedFields{Name: name}, nil
	})
	svc := service.NewParseService(p, cfg, zap.NewNop())

	meds := []domain.Medicine{
		{Name: "fast-1", VPID: "1"},
		{Name: "slow", VPID: "2"},
		{Name: "fast-2", VPID: "3"},
	}

	result, err := svc.ParseBatch(context.Background(), meds)

	assert.NoError(t, err)
	assert.Len(t, result, 3)
	assert.True(t, result[0].OK())
	assert.True(t, result[2].OK())
	assert.False(t, result[1].OK())
	assert.Equal(t, domain.ErrorKindTimeout, result[1].Error.Kind)
	// Timeouts burn the item's budget; they are never retried.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestParseBatch_AllFailed(t *testing.T) {
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		return nil, &parser.UnavailableError{Provider: "test", Err: fmt.Errorf("boom")}
	})
	cfg := testBatchConfig()
	cfg.MaxRetries = 0
	svc := service.NewParseService(p, cfg, zap.NewNop())

	result, err := svc.ParseBatch(context.Background(), []domain.Medicine{{Name: "a"}, {Name: "b"}})

	assert.NoError(t, err)
	assert.Equal(t, domain.BatchAllFailed, result.Status())
}

func TestParseBatch_DuplicatesProcessedIndependently(t *testing.T) {
	calls := int32(0)
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, &parser.InvalidResponseError{Provider: "test", Err: fmt.Errorf("flaky")}
		}
		return &domain.ParsedFields{Name: name}, nil
	})
	cfg := testBatchConfig()
	cfg.Concurrency = 1
	svc := service.NewParseService(p, cfg, zap.NewNop())

	meds := []domain.Medicine{
		{Name: "Aspirin 75mg", VPID: "1"},
		{Name: "Aspirin 75mg", VPID: "2"},
	}
	result, err := svc.ParseBatch(context.Background(), meds)

	assert.NoError(t, err)
	assert.False(t, result[0].OK())
	assert.True(t, result[1].OK())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParseOne_Success(t *testing.T) {
	p := parserFunc(func(ctx context.Context, name string) (*domain.ParsedFields, error) {
		return &domain.ParsedFields{Name: "Paracetamol", Strength: "500mg", Formulation: "tablets"}, nil
	})
	svc := service.NewParseService(p, testBatchConfig(), zap.NewNop())

	outcome := svc.ParseOne(context.Background(), domain.Medicine{Name: "Paracetamol 500mg tablets", VPID: "42"})

	assert.True(t, outcome.OK())
	assert.Equal(t, "42", outcome.VPID)
	assert.Equal(t, "Paracetamol 500mg tablets", outcome.OriginalName)
	assert.Equal(t, "500mg", outcome.Fields.Strength)
}
