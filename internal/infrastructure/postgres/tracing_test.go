package postgres

import (
	"context"
	"errors"
	"net"
	"testing"

	domain "productos/backend/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRepository(t *testing.T) (*ProductRepository, *memStore, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	store := newMemStore()
	return NewProductRepository(store, nil, WithTracerProvider(tp)), store, recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_CreateAndGetRecordSpans(t *testing.T) {
	repo, _, recorder := newTracedRepository(t)

	created, err := repo.Create(context.Background(), sampleFields("Tornillo", "T-001"))
	require.NoError(t, err)
	_, err = repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "ProductRepository.Create", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	sku, ok := spanAttr(spans[0], "sku")
	require.True(t, ok)
	assert.Equal(t, "T-001", sku.AsString())

	assert.Equal(t, "ProductRepository.GetByID", spans[1].Name())
	id, ok := spanAttr(spans[1], "id")
	require.True(t, ok)
	assert.Equal(t, created.ID, id.AsInt64())
	assert.True(t, spans[1].SpanContext().IsValid())
}

func TestTracing_FailureMarksSpanAsError(t *testing.T) {
	repo, store, recorder := newTracedRepository(t)
	store.queryErr = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	_, err := repo.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrConnectionFailure)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ProductRepository.GetByID", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "get product", spans[0].Status().Description)

	events := spans[0].Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "exception", events[0].Name)
}

func TestTracing_NotFoundIsNotAnError(t *testing.T) {
	repo, _, recorder := newTracedRepository(t)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracing_RepositorySpanIsChildOfCaller(t *testing.T) {
	repo, _, recorder := newTracedRepository(t)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, parent := tp.Tracer("caller").Start(context.Background(), "POST /productos")

	_, err := repo.Create(ctx, sampleFields("Tornillo", "T-001"))
	require.NoError(t, err)
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent().SpanID())
}
