package scoring

import (
	"math"
	"math/rand"
	"sync"

	"github.com/Dan9191/credit-assessment/internal/models"
)

// FactorSimulated labels the randomized score in the factor list
const FactorSimulated = "Simulated Score"

const (
	simMin    = 30.0
	simMax    = 95.0
	simMedian = 72.0
)

// SimulatedScorer produces a randomized demo score around a realistic median.
// It is only for demonstrations and is never used in deterministic mode.
// The explanatory factors still come from the additive model.
type SimulatedScorer struct {
	rnd      *lockedRand
	business models.BusinessData
	additive *AdditiveScorer
}

// NewSimulatedScorer creates a simulation scorer backed by the given source
func NewSimulatedScorer(src rand.Source) *SimulatedScorer {
	return &SimulatedScorer{
		rnd:      &lockedRand{r: rand.New(src)},
		additive: NewAdditiveScorer(),
	}
}

// WithBusinessData returns a scorer sharing the random source that adjusts for the given business data
func (s *SimulatedScorer) WithBusinessData(bd models.BusinessData) *SimulatedScorer {
	return &SimulatedScorer{
		rnd:      s.rnd,
		business: bd,
		additive: s.additive,
	}
}

// Mode reports simulation scoring
func (s *SimulatedScorer) Mode() models.ScoringMode { return models.ModeSimulation }

// Score draws a score from a triangular distribution centred on the median.
func (s *SimulatedScorer) Score(fv models.FeatureVector) (int, []models.RiskFactor) {
	spread := s.rnd.spread()

	score := math.Floor(simMedian + spread*(simMax-simMin)/2)
	if s.business.YearsInBusiness > 0 {
		score += math.Min(s.business.YearsInBusiness*2, 10)
	}
	if s.business.MonthlyRevenue > 0 {
		score += math.Log10(s.business.MonthlyRevenue) * 2
	}
	final := int(clamp(math.Round(score), simMin, simMax))

	_, factors := s.additive.Score(fv)
	factors = append(factors, models.RiskFactor{
		Name:        FactorSimulated,
		Impact:      0,
		Description: "Score drawn in simulation mode for demonstration only",
	})
	return final, factors
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// spread is the sum of two uniforms shifted to [-1, 1)
func (l *lockedRand) spread() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64() + l.r.Float64() - 1
}
