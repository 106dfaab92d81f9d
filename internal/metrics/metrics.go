// Package metrics exports engine events as Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/catalog"
)

// Recorder implements session.Metrics.
type Recorder struct {
	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
	paused    prometheus.Counter
	rejected  *prometheus.CounterVec
	retries   *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_attempts_started_total",
			Help: "Attempts started, by stream and whether the seen registry was reset.",
		}, []string{"stream", "reset"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_attempts_completed_total",
			Help: "Attempts completed, by stream.",
		}, []string{"stream"}),
		paused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pathwise_attempts_paused_total",
			Help: "Attempts paused.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_answers_rejected_total",
			Help: "Answer submissions rejected, by reason.",
		}, []string{"reason"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_persistence_retries_total",
			Help: "Persistence writes retried after a transient failure, by operation.",
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{r.started, r.completed, r.paused, r.rejected, r.retries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) AttemptStarted(stream catalog.StreamID, reset bool) {
	r.started.WithLabelValues(string(stream), strconv.FormatBool(reset)).Inc()
}

func (r *Recorder) AttemptCompleted(stream catalog.StreamID) {
	r.completed.WithLabelValues(string(stream)).Inc()
}

func (r *Recorder) AttemptPaused() { r.paused.Inc() }

func (r *Recorder) AnswerRejected(reason string) {
	r.rejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) PersistenceRetry(op string) {
	r.retries.WithLabelValues(op).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
