// Package config reads cons's tunables from the environment at call
// time. There is no cached struct and no global singleton: every
// reader function parses os.Getenv fresh on each invocation, per the
// concurrency model's mandate that "later overrides take effect on
// the next call."
package config

import (
	"os"
	"strconv"
	"time"
)

// LLMEndpoint is the host/model pair the LlmClient implementation
// dials. Read fresh on every call so tests can vary it per call.
type LLMEndpoint struct {
	Host  string
	Model string
}

// Endpoint reads LLM_HOST / LLM_MODEL.
func Endpoint() LLMEndpoint {
	return LLMEndpoint{
		Host:  os.Getenv("LLM_HOST"),
		Model: os.Getenv("LLM_MODEL"),
	}
}

// LLMTimeouts bounds a single LLM call's connect and read phases, and
// its retry behavior. Defaults match the concurrency model: 5s
// connect, 60s read, three retries with 1s/2s/4s backoff.
type LLMTimeouts struct {
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxRetries       int
	RetryBackoffBase time.Duration
}

// Timeouts reads LLM_CONNECT_TIMEOUT_MS / LLM_READ_TIMEOUT_MS, falling
// back to a 5s/60s default. MaxRetries and backoff base are fixed (3
// retries, 1s base) and not independently configurable.
func Timeouts() LLMTimeouts {
	return LLMTimeouts{
		ConnectTimeout:   durationMsEnv("LLM_CONNECT_TIMEOUT_MS", 5*time.Second),
		ReadTimeout:      durationMsEnv("LLM_READ_TIMEOUT_MS", 60*time.Second),
		MaxRetries:       3,
		RetryBackoffBase: time.Second,
	}
}

func durationMsEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func floatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
