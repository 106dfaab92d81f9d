package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/recommend"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pathwise.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DB.Path)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, DefaultSeenTTL, cfg.Redis.SeenTTL)
	assert.Equal(t, 20, cfg.Assessment.QuestionsPerAttempt)
	assert.Equal(t, 3, cfg.Assessment.TopTraits)
	assert.Equal(t, 10, cfg.Assessment.MaxRecommendations)
	assert.Equal(t, "cosine", cfg.Assessment.Normalization)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Metrics.Addr)
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
db:
  path: /tmp/pw.db
redis:
  addr: localhost:6379
  db: 2
  seen_ttl: 72h
assessment:
  questions_per_attempt: 10
  normalization: share
log:
  level: debug
  file: /tmp/pw.log
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pw.db", cfg.DB.Path)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 72*time.Hour, cfg.Redis.SeenTTL)
	assert.Equal(t, 10, cfg.Assessment.QuestionsPerAttempt)
	assert.Equal(t, 3, cfg.Assessment.TopTraits, "unset keys keep defaults")
	assert.Equal(t, "share", cfg.Assessment.Normalization)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/pw.log", cfg.Log.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "assessment:\n  top_traits: 2\n")
	t.Setenv("PATHWISE_ASSESSMENT_TOP_TRAITS", "5")
	t.Setenv("PATHWISE_METRICS_ADDR", ":9090")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Assessment.TopTraits)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_InvalidValues(t *testing.T) {
	p := writeConfig(t, `
assessment:
  questions_per_attempt: 0
  normalization: euclid
log:
  level: chatty
`)

	_, err := Load(p)
	require.Error(t, err)
	assert.ErrorContains(t, err, "assessment.questions_per_attempt")
	assert.ErrorContains(t, err, "assessment.normalization")
	assert.ErrorContains(t, err, "log.level")
}

func TestEngineConfig(t *testing.T) {
	cfg := &Config{Assessment: AssessmentConfig{
		QuestionsPerAttempt: 12,
		TopTraits:           2,
		MaxRecommendations:  4,
		Normalization:       "self_dot",
	}}

	ec := cfg.EngineConfig()
	assert.Equal(t, 12, ec.QuestionsPerAttempt)
	assert.Equal(t, 2, ec.TopTraits)
	assert.Equal(t, 4, ec.Ranking.Limit)
	assert.Equal(t, recommend.NormalizationSelfDot, ec.Ranking.Normalization)
}

func TestDBPath(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DB: DBConfig{Path: filepath.Join(dir, "nested", "pw.db")}}

	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "pw.db"), p)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("PATHWISE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = (&Config{}).DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pathwise", "pathwise.db"), p)
}
