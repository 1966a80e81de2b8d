// Package metrics exports locomotion counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-walk/internal/engine/movement"
	"github.com/Faultbox/midgard-walk/internal/logger"
)

const namespace = "walk"

// Frame holds the per-frame Prometheus collectors. It is a movement.FrameSink.
type Frame struct {
	registry *prometheus.Registry

	frames      prometheus.Counter
	substeps    prometheus.Histogram
	reverts     prometheus.Counter
	corrections prometheus.Counter
	jumps       prometheus.Counter
	airborne    prometheus.Counter
	noGround    prometheus.Counter
	delta       prometheus.Histogram
	colliders   prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Frame {
	m := &Frame{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Integrated movement frames.",
		}),
		substeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_substeps",
			Help:      "Substeps taken per frame.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),
		reverts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "substep_reverts_total",
			Help:      "Substeps undone because terrain was undefined or state went non-finite.",
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collision_corrections_total",
			Help:      "Collider push-outs applied.",
		}),
		jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jumps_total",
			Help:      "Jumps started.",
		}),
		airborne: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airborne_frames_total",
			Help:      "Frames that ended without ground contact.",
		}),
		noGround: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undefined_ground_frames_total",
			Help:      "Frames that started over undefined terrain.",
		}),
		delta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_delta_seconds",
			Help:      "Clamped frame delta.",
			Buckets:   []float64{0.004, 0.008, 0.0167, 0.025, 0.033},
		}),
		colliders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "colliders",
			Help:      "Boxes in the current collider set.",
		}),
	}

	m.registry.MustRegister(
		m.frames, m.substeps, m.reverts, m.corrections,
		m.jumps, m.airborne, m.noGround, m.delta, m.colliders,
	)
	return m
}

// OnFrame records one movement frame.
func (m *Frame) OnFrame(f movement.Frame) {
	m.frames.Inc()
	m.substeps.Observe(float64(f.Substeps))
	m.delta.Observe(f.Delta.Seconds())
	m.reverts.Add(float64(f.Reverted))
	m.corrections.Add(float64(f.Corrections))
	if f.Jumped {
		m.jumps.Inc()
	}
	if !f.Grounded {
		m.airborne.Inc()
	}
	if !f.HasGround {
		m.noGround.Inc()
	}
}

// SetColliders records the size of the published collider set.
func (m *Frame) SetColliders(n int) {
	m.colliders.Set(float64(n))
}

// Registry exposes the underlying registry for gathering.
func (m *Frame) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Frame) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Frame) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
