package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/session"
)

var _ session.Metrics = (*Recorder)(nil)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.AttemptStarted("pcm", false)
	r.AttemptStarted("pcm", true)
	r.AttemptStarted("commerce", false)
	r.AttemptCompleted("pcm")
	r.AttemptPaused()
	r.AttemptPaused()
	r.AnswerRejected(session.RejectQuestionMismatch)
	r.PersistenceRetry("update_attempt")

	body := scrape(t, reg)
	for _, want := range []string{
		`pathwise_attempts_started_total{reset="false",stream="pcm"} 1`,
		`pathwise_attempts_started_total{reset="true",stream="pcm"} 1`,
		`pathwise_attempts_started_total{reset="false",stream="commerce"} 1`,
		`pathwise_attempts_completed_total{stream="pcm"} 1`,
		`pathwise_attempts_paused_total 2`,
		`pathwise_answers_rejected_total{reason="question_mismatch"} 1`,
		`pathwise_persistence_retries_total{op="update_attempt"} 1`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestHandler_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)
	r.AttemptCompleted("commerce")

	assert.Contains(t, scrape(t, reg), `pathwise_attempts_completed_total{stream="commerce"} 1`)
}
