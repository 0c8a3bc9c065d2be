package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	adds, removals Snapshot
}

func (s source) AddStatistics() Snapshot     { return s.adds }
func (s source) RemovalStatistics() Snapshot { return s.removals }

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Update("forest", source{
		adds:     Snapshot{Operations: 4, SubtreesRebuilt: 1},
		removals: Snapshot{Operations: 7, NodesRetrainedInPlace: 12, CumulativeTime: 1500 * time.Millisecond},
	})
	assert.Equal(t, 4.0, testutil.ToFloat64(c.operations.WithLabelValues("forest", "add")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.operations.WithLabelValues("forest", "removal")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.retrainedInPlace.WithLabelValues("forest", "removal")))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.seconds.WithLabelValues("forest", "removal")))
	assert.Equal(t, 12, testutil.CollectAndCount(c))

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}
