package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpreadingDefaults(t *testing.T) {
	t.Setenv("CONS_DECAY", "")
	t.Setenv("CONS_THRESHOLD", "")
	t.Setenv("CONS_MAX_HOPS", "")

	s := Spreading()
	assert.Equal(t, 0.7, s.Decay)
	assert.Equal(t, 0.1, s.Threshold)
	assert.Equal(t, 3, s.MaxHops)
}

func TestSpreadingOverride(t *testing.T) {
	t.Setenv("CONS_DECAY", "0.5")
	t.Setenv("CONS_MAX_HOPS", "5")

	s := Spreading()
	assert.Equal(t, 0.5, s.Decay)
	assert.Equal(t, 5, s.MaxHops)
}

func TestSpreadingReadAtCallTime(t *testing.T) {
	t.Setenv("CONS_DECAY", "0.9")
	first := Spreading()
	assert.Equal(t, 0.9, first.Decay)

	t.Setenv("CONS_DECAY", "0.2")
	second := Spreading()
	assert.Equal(t, 0.2, second.Decay, "a later override must take effect on the next call, not require a fresh process")
}

func TestDualSearchDefaults(t *testing.T) {
	t.Setenv("CONS_FTS_WEIGHT", "")
	t.Setenv("CONS_GRAPH_WEIGHT", "")
	t.Setenv("CONS_INTERSECTION_BONUS", "")
	t.Setenv("CONS_MIN_AVG_ACTIVATION", "")
	t.Setenv("CONS_MIN_ACTIVATED_TAGS", "")

	f := DualSearch()
	assert.Equal(t, 1.0, f.FtsWeight)
	assert.Equal(t, 1.0, f.GraphWeight)
	assert.Equal(t, 0.5, f.IntersectionBonus)
	assert.Equal(t, 0.1, f.MinAvgActivation)
	assert.Equal(t, 2, f.MinActivatedTags)
}

func TestQueryExpansionDefaults(t *testing.T) {
	t.Setenv("CONS_EXPANSION_DEPTH", "")
	t.Setenv("CONS_MAX_EXPANSION_TERMS", "")
	t.Setenv("CONS_BROADER_MIN_CONFIDENCE", "")

	e := QueryExpansion()
	assert.Equal(t, 1, e.Depth)
	assert.Equal(t, 10, e.MaxTerms)
	assert.Equal(t, 0.7, e.BroaderMinConfidence)
}

func TestTimeoutsDefaults(t *testing.T) {
	t.Setenv("LLM_CONNECT_TIMEOUT_MS", "")
	t.Setenv("LLM_READ_TIMEOUT_MS", "")

	tm := Timeouts()
	assert.Equal(t, 5000, int(tm.ConnectTimeout.Milliseconds()))
	assert.Equal(t, 60000, int(tm.ReadTimeout.Milliseconds()))
	assert.Equal(t, 3, tm.MaxRetries)
}

func TestDBPathDefault(t *testing.T) {
	t.Setenv("CONS_DB_PATH", "")
	assert.Equal(t, "./cons.db", DBPath())

	t.Setenv("CONS_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DBPath())
}
