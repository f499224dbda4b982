package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid marks configuration a batch run cannot proceed with. It aborts
// the whole run before any product is processed.
var ErrInvalid = errors.New("invalid configuration")

// Recognized runtime parameter keys.
const (
	KeyAlertThreshold = "alert.threshold"
	KeyScrapeDelay    = "scrape.delay_seconds"
	KeyUserAgentPool  = "scrape.user_agent_pool"
)

// Source is the external parameter collaborator: a flat key lookup with a
// caller-supplied default. Implementations may be remote; the orchestrator
// only ever reads it through a per-run Snapshot.
type Source interface {
	Get(key, def string) string
}

// viperSource adapts the loaded viper instance to Source, so runtime
// parameters live in the same config.toml / env surface as everything else.
type viperSource struct {
	v *viper.Viper
}

func (s viperSource) Get(key, def string) string {
	if s.v.IsSet(key) {
		return s.v.GetString(key)
	}
	return def
}

// StaticSource is a map-backed Source for tests.
type StaticSource map[string]string

func (s StaticSource) Get(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// defaultUserAgents is the non-empty fallback pool. Plain browser strings;
// the rotation only needs variety, not novelty.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// Snapshot is the runtime parameter set for one batch run, resolved once at
// run start so per-product processing never re-reads the source.
type Snapshot struct {
	AlertThreshold float64
	ScrapeDelay    time.Duration
	UserAgents     []string
}

// TakeSnapshot resolves and validates the runtime parameters. Unset keys
// fall back to the documented defaults; present-but-unusable values are
// ErrInvalid, which is fatal for the run.
func TakeSnapshot(src Source) (Snapshot, error) {
	snap := Snapshot{}

	threshold, err := strconv.ParseFloat(src.Get(KeyAlertThreshold, "0.05"), 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalid, KeyAlertThreshold, err)
	}
	if threshold <= 0 || threshold >= 1 {
		return Snapshot{}, fmt.Errorf("%w: %s must be a fraction in (0, 1), got %v", ErrInvalid, KeyAlertThreshold, threshold)
	}
	snap.AlertThreshold = threshold

	delaySec, err := strconv.ParseFloat(src.Get(KeyScrapeDelay, "2"), 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalid, KeyScrapeDelay, err)
	}
	if delaySec < 0 {
		return Snapshot{}, fmt.Errorf("%w: %s cannot be negative", ErrInvalid, KeyScrapeDelay)
	}
	snap.ScrapeDelay = time.Duration(delaySec * float64(time.Second))

	snap.UserAgents = parsePool(src.Get(KeyUserAgentPool, ""))
	if len(snap.UserAgents) == 0 {
		snap.UserAgents = defaultUserAgents
	}

	return snap, nil
}

// parsePool splits a comma- or newline-separated user agent list, dropping
// blanks.
func parsePool(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
