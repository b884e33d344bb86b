// Package metrics exports channel activity to Prometheus.
//
// A [Collector] hands out one [mpsc.Observer] per channel name. The observers
// count sends, receives and state transitions; tracked channels are sampled
// for buffer depth and handle counts on every scrape.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iron-Ham/mpsc/internal/logging"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

const namespace = "mpsc"

// Collector aggregates metrics for any number of named channels.
type Collector struct {
	sends       *prometheus.CounterVec
	recvs       *prometheus.CounterVec
	transitions *prometheus.CounterVec

	buffered  *prometheus.Desc
	senders   *prometheus.Desc
	receivers *prometheus.Desc
	pooled    *prometheus.Desc

	mu      sync.RWMutex
	tracked map[string]func() mpsc.Stats
}

// New creates a Collector. Register it with a registry to export it.
func New() *Collector {
	return &Collector{
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send calls by channel and result.",
		}, []string{"channel", "result"}),
		recvs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receives_total",
			Help:      "Receive calls by channel, receive mode and result.",
		}, []string{"channel", "mode", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Channel state changes by previous and new state.",
		}, []string{"channel", "from", "to"}),

		buffered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "buffered_messages"),
			"Messages buffered in the channel and not yet received.",
			[]string{"channel"}, nil),
		senders: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "live_senders"),
			"Sender handles currently attached.",
			[]string{"channel"}, nil),
		receivers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "live_receivers"),
			"Receiver handles currently attached.",
			[]string{"channel"}, nil),
		pooled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "pooled_nodes"),
			"Retired nodes held on the freelist for reuse.",
			[]string{"channel"}, nil),

		tracked: make(map[string]func() mpsc.Stats),
	}
}

// Observer returns an mpsc.Observer that records under the given channel
// label. Pass it to mpsc.WithObserver.
func (c *Collector) Observer(channel string) mpsc.Observer {
	labels := prometheus.Labels{"channel": channel}
	return &observer{
		sends:       c.sends.MustCurryWith(labels),
		recvs:       c.recvs.MustCurryWith(labels),
		transitions: c.transitions.MustCurryWith(labels),
	}
}

// Track samples stats on every scrape for the channel gauges. Tracking the
// same name again replaces the previous source.
func (c *Collector) Track(channel string, stats func() mpsc.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked[channel] = stats
}

// Untrack stops sampling a channel.
func (c *Collector) Untrack(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tracked, channel)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.sends.Describe(ch)
	c.recvs.Describe(ch)
	c.transitions.Describe(ch)
	ch <- c.buffered
	ch <- c.senders
	ch <- c.receivers
	ch <- c.pooled
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.sends.Collect(ch)
	c.recvs.Collect(ch)
	c.transitions.Collect(ch)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, stats := range c.tracked {
		s := stats()
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Buffered), name)
		ch <- prometheus.MustNewConstMetric(c.senders, prometheus.GaugeValue, float64(s.Senders), name)
		ch <- prometheus.MustNewConstMetric(c.receivers, prometheus.GaugeValue, float64(s.Receivers), name)
		ch <- prometheus.MustNewConstMetric(c.pooled, prometheus.GaugeValue, float64(s.Pooled), name)
	}
}

type observer struct {
	sends       *prometheus.CounterVec
	recvs       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func (o *observer) ObserveSend(err error) {
	o.sends.WithLabelValues(mpsc.ResultString(err)).Inc()
}

func (o *observer) ObserveRecv(mode mpsc.RecvMode, err error) {
	o.recvs.WithLabelValues(mode.String(), mpsc.ResultString(err)).Inc()
}

func (o *observer) ObserveState(from, to mpsc.State) {
	o.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// Serve exposes the registry on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
			return err
		}
		return nil
	}
}
