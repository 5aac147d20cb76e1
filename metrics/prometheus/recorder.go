package prometheus

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-hashgate/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace    = "hashgate"
	labelOp      = "operation"
	labelStatus  = "status"
	unknownLabel = "unknown"
)

// Recorder implements core.MetricsRecorder over counter and histogram vecs.
// Metric names it does not know are ignored.
type Recorder struct {
	gatherer prom.Gatherer

	operations *prom.CounterVec
	durations  *prom.HistogramVec
	reauths    prom.Counter
}

type Option func(*recorderOptions)

type recorderOptions struct {
	buckets []float64
}

// WithDurationBuckets overrides the duration histogram buckets, in seconds.
func WithDurationBuckets(buckets ...float64) Option {
	return func(o *recorderOptions) {
		if len(buckets) > 0 {
			o.buckets = append([]float64(nil), buckets...)
		}
	}
}

// NewRecorder registers the hashgate collectors on registry. A nil registry
// gets a fresh private one.
func NewRecorder(registry *prom.Registry, opts ...Option) (*Recorder, error) {
	if registry == nil {
		registry = prom.NewRegistry()
	}
	options := recorderOptions{buckets: prom.DefBuckets}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	recorder := &Recorder{
		gatherer: registry,
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_total",
			Help:      "Total number of gateway operations, by operation and outcome.",
		}, []string{labelOp, labelStatus}),
		durations: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of gateway operations including any re-authentication.",
			Buckets:   options.buckets,
		}, []string{labelOp, labelStatus}),
		reauths: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reauth_total",
			Help:      "Total number of token refreshes triggered by a 401 response.",
		}),
	}

	for _, collector := range []prom.Collector{recorder.operations, recorder.durations, recorder.reauths} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return recorder, nil
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value <= 0 {
		return
	}
	switch strings.TrimSpace(name) {
	case core.MetricOperationTotal:
		r.operations.WithLabelValues(label(tags, labelOp), label(tags, labelStatus)).Add(float64(value))
	case core.MetricReauthTotal:
		r.reauths.Add(float64(value))
	}
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	if strings.TrimSpace(name) != core.MetricOperationDurationMS {
		return
	}
	r.durations.WithLabelValues(label(tags, labelOp), label(tags, labelStatus)).Observe(value / 1000)
}

// Handler serves the registry the recorder was built with.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func label(tags map[string]string, key string) string {
	value := strings.TrimSpace(tags[key])
	if value == "" {
		return unknownLabel
	}
	return value
}

var _ core.MetricsRecorder = (*Recorder)(nil)
