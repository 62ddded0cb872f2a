// Package metrics provides a minimal instrumentation interface with a no-op
// default and an optional Prometheus-backed implementation.
package metrics

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncQueryTotal(op string, success bool)
	ObserveQuerySeconds(op string, success bool, seconds float64)
	IncCache(hit bool)
	SetDatasetSize(n int)
}

type noopRecorder struct{}

func (n *noopRecorder) IncQueryTotal(string, bool)                {}
func (n *noopRecorder) ObserveQuerySeconds(string, bool, float64) {}
func (n *noopRecorder) IncCache(bool)                             {}
func (n *noopRecorder) SetDatasetSize(int)                        {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation. A nil recorder
// restores the no-op default.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = &noopRecorder{}
	}
	recorder = r
}

// TimeQuery is a helper to time engine operations.
func TimeQuery(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncQueryTotal(op, success)
		Default().ObserveQuerySeconds(op, success, dur)
	}
}

// Exporter is a running metrics endpoint. A nil Exporter is valid and idle.
type Exporter struct {
	srv      *http.Server
	listener net.Listener
}

// Addr returns the bound listen address.
func (e *Exporter) Addr() string {
	if e == nil {
		return ""
	}
	return e.listener.Addr().String()
}

// Close stops serving.
func (e *Exporter) Close() error {
	if e == nil {
		return nil
	}
	return e.srv.Close()
}
