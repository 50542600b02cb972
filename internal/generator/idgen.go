package generator

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Strategy selects how the numeric suffix of a test-case id is produced.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyTimestamp  Strategy = "timestamp"
	StrategyRandom     Strategy = "random"
)

// IDGenerator produces ids of the form TC-<FEATURE>-<NUMBER>.
type IDGenerator interface {
	Generate(feature string) string
}

// NewIDGenerator returns a fresh generator for strategy. Each call returns
// an independent instance; sequential counters are never shared implicitly.
func NewIDGenerator(strategy Strategy, now func() time.Time) (IDGenerator, error) {
	if now == nil {
		now = time.Now
	}
	switch strategy {
	case "", StrategySequential:
		return NewSequentialGenerator(), nil
	case StrategyTimestamp:
		return &TimestampGenerator{now: now}, nil
	case StrategyRandom:
		return &RandomGenerator{intN: rand.IntN}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (expected sequential, timestamp or random)", strategy)
	}
}

var nonFeatureChars = regexp.MustCompile(`[^A-Z]+`)

// NormalizeFeature turns a free-form feature name into the upper-case id
// segment: "user-profile" becomes "USER_PROFILE". Names without any latin
// letter fall back to "GENERAL".
func NormalizeFeature(feature string) string {
	upper := strings.ToUpper(strings.TrimSpace(feature))
	segment := strings.Trim(nonFeatureChars.ReplaceAllString(upper, "_"), "_")
	if segment == "" {
		return "GENERAL"
	}
	return segment
}

// SequentialGenerator numbers ids 001, 002, ... for the lifetime of the
// instance.
type SequentialGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewSequentialGenerator() *SequentialGenerator {
	return &SequentialGenerator{}
}

func (g *SequentialGenerator) Generate(feature string) string {
	g.mu.Lock()
	g.counter++
	n := g.counter
	g.mu.Unlock()
	return fmt.Sprintf("TC-%s-%03d", NormalizeFeature(feature), n)
}

// Reset restarts numbering at 001.
func (g *SequentialGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}

// TimestampGenerator uses the last six digits of the current Unix
// millisecond time.
type TimestampGenerator struct {
	now func() time.Time
}

func (g *TimestampGenerator) Generate(feature string) string {
	return fmt.Sprintf("TC-%s-%06d", NormalizeFeature(feature), g.now().UnixMilli()%1_000_000)
}

// RandomGenerator picks a number in [0, 999].
type RandomGenerator struct {
	intN func(int) int
}

func (g *RandomGenerator) Generate(feature string) string {
	return fmt.Sprintf("TC-%s-%03d", NormalizeFeature(feature), g.intN(1000))
}
