package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LerianStudio/lib-allocation/allocation"
	"github.com/LerianStudio/lib-allocation/allocation/installment"
	"github.com/LerianStudio/lib-allocation/allocation/layaway"
	"github.com/LerianStudio/lib-allocation/allocation/split"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func splitRequest() split.Request {
	return split.Request{
		TotalAmount: dec("10000.00"),
		Currency:    "NGN",
		Rules: []split.Rule{
			{RecipientID: "supplier", Type: split.RuleFixedAmount, Value: dec("2000.00")},
			{RecipientID: "platform", Type: split.RulePercentage, Value: dec("10")},
			{RecipientID: "merchant", Type: split.RuleRemaining},
		},
	}
}

func newRedisEngine(t *testing.T) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(WithCache(NewRedisCache(client), time.Hour)), mr
}

func TestEngine_ComputeSplit(t *testing.T) {
	t.Parallel()

	eng := New(WithLogger(zap.NewNop()))

	outcome, err := eng.ComputeSplit(context.Background(), "ref-1", splitRequest())
	require.NoError(t, err)

	assert.True(t, outcome.Reconciled)
	assert.True(t, dec("10000.00").Equal(outcome.TotalCalculated))
}

func TestEngine_ComputeSplit_InvalidRequest(t *testing.T) {
	t.Parallel()

	eng, mr := newRedisEngine(t)

	req := splitRequest()
	req.TotalAmount = decimal.Zero

	_, err := eng.ComputeSplit(context.Background(), "ref-bad", req)
	require.Error(t, err)

	var domainErr allocation.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, allocation.ErrorInvalidRequest, domainErr.Code)
	assert.Empty(t, mr.Keys(), "rejected requests must not be cached")
}

func TestEngine_ComputeSplit_CachesByReference(t *testing.T) {
	t.Parallel()

	eng, mr := newRedisEngine(t)
	ctx := context.Background()

	first, err := eng.ComputeSplit(ctx, "ref-42", splitRequest())
	require.NoError(t, err)
	require.True(t, mr.Exists(splitKeyPrefix+"ref-42"))

	// Replace the cached value with a marker to prove the second call is
	// served from the cache rather than recomputed.
	marker := first
	marker.TotalCalculated = dec("999.99")
	raw, err := json.Marshal(marker)
	require.NoError(t, err)
	require.NoError(t, mr.Set(splitKeyPrefix+"ref-42", string(raw)))

	second, err := eng.ComputeSplit(ctx, "ref-42", splitRequest())
	require.NoError(t, err)
	assert.True(t, dec("999.99").Equal(second.TotalCalculated))
}

func TestEngine_ComputeSplit_EmptyReferenceSkipsCache(t *testing.T) {
	t.Parallel()

	eng, mr := newRedisEngine(t)

	_, err := eng.ComputeSplit(context.Background(), "", splitRequest())
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

// failingCache simulates a degraded cache backend.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestEngine_CacheFailureDoesNotFailComputation(t *testing.T) {
	t.Parallel()

	eng := New(WithCache(failingCache{}, time.Hour))

	outcome, err := eng.ComputeSplit(context.Background(), "ref-7", splitRequest())
	require.NoError(t, err)
	assert.True(t, outcome.Reconciled)
}

func TestEngine_ComputeSchedule_RoundTripsThroughCache(t *testing.T) {
	t.Parallel()

	eng, mr := newRedisEngine(t)
	ctx := context.Background()

	req := installment.Request{
		Principal:                 dec("1000.00"),
		Currency:                  "NGN",
		InstallmentCount:          3,
		FrequencyDays:             30,
		StartDate:                 time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		AnnualInterestRatePercent: dec("12"),
	}

	first, err := eng.ComputeSchedule(ctx, "sched-1", req)
	require.NoError(t, err)
	require.True(t, mr.Exists(scheduleKeyPrefix+"sched-1"))

	second, err := eng.ComputeSchedule(ctx, "sched-1", req)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, firstJSON, secondJSON)
}

func TestEngine_ComputePlan(t *testing.T) {
	t.Parallel()

	eng, mr := newRedisEngine(t)

	plan, err := eng.ComputePlan(context.Background(), "plan-1", layaway.Request{
		TotalAmount:    dec("50000.00"),
		Currency:       "NGN",
		DepositPercent: dec("10"),
		MinimumDeposit: dec("2000.00"),
		StartDate:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		PeriodDays:     90,
	})
	require.NoError(t, err)

	assert.True(t, dec("5000.00").Equal(plan.RequiredDeposit))
	assert.True(t, dec("45000.00").Equal(plan.RemainingAmount))
	assert.True(t, mr.Exists(layawayKeyPrefix+"plan-1"))
}
