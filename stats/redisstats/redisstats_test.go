package redisstats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjbrophy47/dare/stats"
)

type source struct{}

func (source) AddStatistics() stats.Snapshot     { return stats.Snapshot{} }
func (source) RemovalStatistics() stats.Snapshot { return stats.Snapshot{} }

func TestKeyFor(t *testing.T) {
	p := New(nil, "dare", JSON())
	assert.Equal(t, "dare:forest:removal", p.keyFor("forest", "removal"))
}

func TestJSONEncodeDecoder(t *testing.T) {
	s := stats.Snapshot{Operations: 3, CumulativeTime: time.Second, RebuildDepths: map[int]int64{2: 1}}
	data, err := JSON().Encode(s)
	require.NoError(t, err)
	decoded, err := JSON().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(nil, "dare", JSON())
	assert.Equal(t, context.Canceled, p.Publish(ctx, "tree", source{}))
	_, err := p.Fetch(ctx, "tree", "add")
	assert.Equal(t, context.Canceled, err)
}

type failingEncoder struct {
	encoded []int64
}

func (e *failingEncoder) Encode(s stats.Snapshot) ([]byte, error) {
	e.encoded = append(e.encoded, s.Operations)
	return nil, fmt.Errorf("encoder unavailable")
}

func (e *failingEncoder) Decode([]byte) (stats.Snapshot, error) {
	return stats.Snapshot{}, fmt.Errorf("encoder unavailable")
}

type countingSource struct{}

func (countingSource) AddStatistics() stats.Snapshot     { return stats.Snapshot{Operations: 1} }
func (countingSource) RemovalStatistics() stats.Snapshot { return stats.Snapshot{Operations: 2} }

func TestPublishWritesAddBeforeRemoval(t *testing.T) {
	for i := 0; i < 20; i++ {
		enc := &failingEncoder{}
		err := New(nil, "dare", enc).Publish(context.Background(), "tree", countingSource{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encoding tree add statistics")
		assert.Equal(t, []int64{1}, enc.encoded)
	}
}
