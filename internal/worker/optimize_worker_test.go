package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"
)

type stubAdvisor struct {
	calls []string
	resp  *dto.OptimizeResponse
	err   error
}

var _ service.AdvisorService = (*stubAdvisor)(nil)

func (s *stubAdvisor) Optimize(ctx context.Context, productID string) (*dto.OptimizeResponse, error) {
	s.calls = append(s.calls, productID)
	return s.resp, s.err
}

func (s *stubAdvisor) EnqueueFleet(ctx context.Context, req dto.OptimizeFleetRequest) (*dto.OptimizeFleetResponse, error) {
	return nil, errors.New("not implemented")
}

func TestOptimizeWorker_InvalidPayloadDropped(t *testing.T) {
	advisor := &stubAdvisor{}
	w := NewOptimizeWorker(advisor, nil)

	w.Process(context.Background(), json.RawMessage(`{not json`))

	assert.Empty(t, advisor.calls)
}

func TestOptimizeWorker_EmptyProductIDDropped(t *testing.T) {
	advisor := &stubAdvisor{}
	w := NewOptimizeWorker(advisor, nil)

	w.Process(context.Background(), json.RawMessage(`{"product_id":""}`))

	assert.Empty(t, advisor.calls)
}

func TestOptimizeWorker_Success(t *testing.T) {
	advisor := &stubAdvisor{resp: &dto.OptimizeResponse{
		CurrentPrice:   decimal.RequireFromString("9.99"),
		SuggestedPrice: decimal.RequireFromString("9.49"),
		MLScore:        88.0,
	}}
	w := NewOptimizeWorker(advisor, nil)

	w.Process(context.Background(), json.RawMessage(`{"product_id":"p-1"}`))

	require.Len(t, advisor.calls, 1)
	assert.Equal(t, "p-1", advisor.calls[0])
}

func TestOptimizeWorker_MissingRecordIsTerminal(t *testing.T) {
	advisor := &stubAdvisor{err: apierror.ErrNotFound}
	// rdb is nil: a retry or DLQ push would panic, proving neither happens.
	w := NewOptimizeWorker(advisor, nil)

	w.Process(context.Background(), json.RawMessage(`{"product_id":"p-gone","attempts":2}`))

	assert.Len(t, advisor.calls, 1)
}

func TestNewDeadOptimizeJob(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	job := newDeadOptimizeJob(
		OptimizeJobPayload{ProductID: "p-2", Attempts: 3},
		errors.New("ml sidecar circuit open"),
		at,
	)

	assert.Equal(t, "p-2", job.ProductID)
	assert.Equal(t, 3, job.Attempts)
	assert.Equal(t, "ml sidecar circuit open", job.Cause)
	assert.Equal(t, at, job.FailedAt)

	data, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"productId":"p-2"`)
}
