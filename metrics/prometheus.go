//go:build !noprom

package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type promRecorder struct {
	queryTotal   *prom.CounterVec
	querySeconds *prom.HistogramVec
	cacheTotal   *prom.CounterVec
	datasetSize  prom.Gauge
}

func (p *promRecorder) IncQueryTotal(op string, success bool) {
	p.queryTotal.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveQuerySeconds(op string, success bool, seconds float64) {
	p.querySeconds.WithLabelValues(op, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheTotal.WithLabelValues(result).Inc()
}

func (p *promRecorder) SetDatasetSize(n int) { p.datasetSize.Set(float64(n)) }

func newPromRecorder(registry *prom.Registry) *promRecorder {
	p := &promRecorder{
		queryTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "heromatch_queries_total",
			Help: "Total number of engine operations",
		}, []string{"op", "success"}),
		querySeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "heromatch_query_seconds",
			Help:    "Engine operation duration in seconds",
			Buckets: prom.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op", "success"}),
		cacheTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "heromatch_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		}, []string{"result"}),
		datasetSize: prom.NewGauge(prom.GaugeOpts{
			Name: "heromatch_dataset_entities",
			Help: "Number of entities in the reference dataset",
		}),
	}
	registry.MustRegister(p.queryTotal, p.querySeconds, p.cacheTotal, p.datasetSize)
	return p
}

// Handler installs a Prometheus recorder and returns an HTTP handler serving
// /metrics and /healthz.
func Handler() http.Handler {
	registry := prom.NewRegistry()
	SetRecorder(newPromRecorder(registry))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Enable binds addr, installs the Prometheus recorder and serves it in the
// background. Bind failures are returned; serve failures are logged.
func Enable(addr string, logger logrus.FieldLogger) (*Exporter, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	e := &Exporter{
		srv:      &http.Server{Handler: Handler(), ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
	}
	go func() {
		if err := e.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).WithField("addr", addr).Error("metrics exporter stopped")
		}
	}()
	return e, nil
}
