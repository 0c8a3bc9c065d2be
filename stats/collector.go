package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source is implemented by models keeping add and removal statistics.
type Source interface {
	AddStatistics() Snapshot
	RemovalStatistics() Snapshot
}

var labels = []string{"model", "history"}

/*
Collector exports the statistics of models as prometheus gauges labelled
with the model name and the history ("add" or "removal") they belong to.
Values are refreshed by Update.
*/
type Collector struct {
	operations         *prometheus.GaugeVec
	retrainedInPlace   *prometheus.GaugeVec
	subtreesRebuilt    *prometheus.GaugeVec
	leavesConverted    *prometheus.GaugeVec
	instancesRetrained *prometheus.GaugeVec
	seconds            *prometheus.GaugeVec
}

// NewCollector returns a Collector to be registered on a prometheus registry.
func NewCollector() *Collector {
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dare",
			Name:      name,
			Help:      help,
		}, labels)
	}
	return &Collector{
		operations:         gauge("operations", "Instance adds or deletes applied"),
		retrainedInPlace:   gauge("nodes_retrained_in_place", "Internal nodes that absorbed a change without a rebuild"),
		subtreesRebuilt:    gauge("subtrees_rebuilt", "Subtrees rebuilt from their instances"),
		leavesConverted:    gauge("leaves_converted", "Leaves turned into internal nodes"),
		instancesRetrained: gauge("instances_retrained", "Instances involved in rebuilds"),
		seconds:            gauge("operation_seconds", "Cumulative time spent applying changes"),
	}
}

// Update takes a model name and its statistics source and refreshes the gauges.
func (c *Collector) Update(model string, src Source) {
	c.set(model, "add", src.AddStatistics())
	c.set(model, "removal", src.RemovalStatistics())
}

func (c *Collector) set(model, history string, s Snapshot) {
	c.operations.WithLabelValues(model, history).Set(float64(s.Operations))
	c.retrainedInPlace.WithLabelValues(model, history).Set(float64(s.NodesRetrainedInPlace))
	c.subtreesRebuilt.WithLabelValues(model, history).Set(float64(s.SubtreesRebuilt))
	c.leavesConverted.WithLabelValues(model, history).Set(float64(s.LeavesConverted))
	c.instancesRetrained.WithLabelValues(model, history).Set(float64(s.InstancesRetrained))
	c.seconds.WithLabelValues(model, history).Set(s.CumulativeTime.Seconds())
}

func (c *Collector) vecs() []*prometheus.GaugeVec {
	return []*prometheus.GaugeVec{
		c.operations, c.retrainedInPlace, c.subtreesRebuilt,
		c.leavesConverted, c.instancesRetrained, c.seconds,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, v := range c.vecs() {
		v.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, v := range c.vecs() {
		v.Collect(ch)
	}
}
