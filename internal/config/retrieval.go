package config

// SpreadingActivation bounds how far and how strongly activation
// propagates over the tag graph.
type SpreadingActivation struct {
	Decay     float64
	Threshold float64
	MaxHops   int
}

// Spreading reads CONS_DECAY / CONS_THRESHOLD / CONS_MAX_HOPS.
func Spreading() SpreadingActivation {
	return SpreadingActivation{
		Decay:     floatEnv("CONS_DECAY", 0.7),
		Threshold: floatEnv("CONS_THRESHOLD", 0.1),
		MaxHops:   intEnv("CONS_MAX_HOPS", 3),
	}
}

// Fusion controls how FtsSearch and SpreadingActivation results are
// combined and when the graph channel is considered too sparse to
// trust.
type Fusion struct {
	FtsWeight         float64
	GraphWeight       float64
	IntersectionBonus float64
	MinAvgActivation  float64
	MinActivatedTags  int
}

// DualSearch reads the CONS_FTS_WEIGHT / CONS_GRAPH_WEIGHT /
// CONS_INTERSECTION_BONUS / CONS_MIN_AVG_ACTIVATION /
// CONS_MIN_ACTIVATED_TAGS family.
func DualSearch() Fusion {
	return Fusion{
		FtsWeight:         floatEnv("CONS_FTS_WEIGHT", 1.0),
		GraphWeight:       floatEnv("CONS_GRAPH_WEIGHT", 1.0),
		IntersectionBonus: floatEnv("CONS_INTERSECTION_BONUS", 0.5),
		MinAvgActivation:  floatEnv("CONS_MIN_AVG_ACTIVATION", 0.1),
		MinActivatedTags:  intEnv("CONS_MIN_ACTIVATED_TAGS", 2),
	}
}
