package main

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/redis.v5"

	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/stats"
	"github.com/jjbrophy47/dare/stats/redisstats"
)

type evaluation struct {
	accuracy float64
	auc      float64
}

func (e evaluation) String() string {
	return fmt.Sprintf("accuracy: %.4f auc: %.4f", e.accuracy, e.auc)
}

// evaluate returns the accuracy and the ROC AUC of a model on a dataset.
func evaluate(m model, d *dataset.Dataset) (evaluation, error) {
	probas, err := m.PredictProba(d.X)
	if err != nil {
		return evaluation{}, err
	}
	scores := make([]float64, len(probas))
	labels := make([]int, len(probas))
	for i, p := range probas {
		scores[i] = p[1]
		if p[1] >= p[0] {
			labels[i] = 1
		}
	}
	return evaluation{accuracy: accuracy(labels, d.Y), auc: auc(scores, d.Y)}, nil
}

func accuracy(predicted, y []int) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	var hits int
	for i, p := range predicted {
		if p == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(y))
}

// auc returns the area under the ROC curve, NaN when only one label is present.
func auc(scores []float64, y []int) float64 {
	s := append([]float64(nil), scores...)
	classes := make([]bool, len(y))
	var positives int
	for i, v := range y {
		classes[i] = v == 1
		positives += v
	}
	if positives == 0 || positives == len(y) {
		return math.NaN()
	}
	stat.SortWeightedLabeled(s, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, s, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

func writeStatistics(w io.Writer, name string, m model) {
	fmt.Fprintf(w, "%s: %d nodes, %d bytes\n", name, m.NodeCount(), m.MemoryUsage())
	for _, h := range []struct {
		name string
		s    stats.Snapshot
	}{{"add", m.AddStatistics()}, {"removal", m.RemovalStatistics()}} {
		fmt.Fprintf(w, "%s statistics: operations=%d retrained_in_place=%d subtrees_rebuilt=%d leaves_converted=%d instances_retrained=%d time=%s\n",
			h.name, h.s.Operations, h.s.NodesRetrainedInPlace, h.s.SubtreesRebuilt, h.s.LeavesConverted, h.s.InstancesRetrained, h.s.CumulativeTime)
	}
}

// export writes the statistics of the model to the prometheus text file and
// publishes them to redis when configured.
func (rc *rootCmdConfig) export(ctx context.Context, name string, m model) error {
	if rc.metricsTextfile != "" {
		registry := prometheus.NewRegistry()
		c := stats.NewCollector()
		c.Update(name, m)
		registry.MustRegister(c)
		err := prometheus.WriteToTextfile(rc.metricsTextfile, registry)
		if err != nil {
			return errors.Wrap(err, "writing metrics text file")
		}
		log.Debugf("statistics written to %s", rc.metricsTextfile)
	}
	if rc.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: rc.redisAddr})
		defer client.Close()
		err := redisstats.New(client, rc.redisPrefix, redisstats.JSON()).Publish(ctx, name, m)
		if err != nil {
			return err
		}
		log.Debugf("statistics published to redis at %s", rc.redisAddr)
	}
	return nil
}
