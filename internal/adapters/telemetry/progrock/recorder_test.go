package progrock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"

	"go.trai.ch/gqlstore/internal/adapters/telemetry/progrock"
	"go.trai.ch/gqlstore/internal/core/ports"
)

// captureWriter keeps the latest state of every vertex written to it.
type captureWriter struct {
	mu       sync.Mutex
	vertices map[string]*vprogrock.Vertex
	closed   bool
}

func (w *captureWriter) WriteStatus(update *vprogrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.vertices == nil {
		w.vertices = make(map[string]*vprogrock.Vertex)
	}
	for _, v := range update.Vertexes {
		w.vertices[v.Id] = v
	}
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *captureWriter) byName(name string) []*vprogrock.Vertex {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*vprogrock.Vertex
	for _, v := range w.vertices {
		if v.Name == name {
			out = append(out, v)
		}
	}
	return out
}

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_Record(t *testing.T) {
	w := &captureWriter{}
	recorder := progrock.NewRecorder(w)

	ctx, vertex := recorder.Record(context.Background(), "query GetUser")
	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("response written\n"))
	require.NoError(t, err)
	vertex.Log("served from cache")
	vertex.Cached()
	vertex.Complete(nil)

	_, failed := recorder.Record(context.Background(), "query GetUser")
	failed.Complete(errors.New("boom"))

	require.NoError(t, recorder.Close())
	assert.True(t, w.closed)

	got := w.byName("query GetUser")
	require.Len(t, got, 2, "same name must produce distinct vertices")

	var cached, errored int
	for _, v := range got {
		assert.NotNil(t, v.Completed)
		if v.Cached {
			cached++
		}
		if v.Error != nil {
			errored++
		}
	}
	assert.Equal(t, 1, cached)
	assert.Equal(t, 1, errored)
}
