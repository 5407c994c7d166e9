package activity

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source produces the activity list for a homework.
type Source interface {
	// Generate returns a non-empty, ordered activity list with IDs 1..N.
	Generate(hw Homework) []Activity
}

// builder synthesizes the activities for one topic. IDs are assigned by
// the Generator afterwards.
type builder func(r *rand.Rand) []Activity

var builders = map[Topic]builder{
	TopicAddition:    buildAddition,
	TopicSubtraction: buildSubtraction,
	TopicCounting:    buildCounting,
	TopicShapes:      buildShapes,
	TopicColors:      buildColors,
	TopicLetters:     buildLetters,
	TopicAnimals:     buildAnimals,
	TopicGeneric:     buildGeneric,
}

// Generator builds activity lists from an injected random source.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Source = (*Generator)(nil)

// New returns a Generator drawing from rng.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded returns a Generator whose output is reproducible for seed.
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewDefault returns a Generator seeded from the clock.
func NewDefault() *Generator {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// Generate classifies hw and builds its activity list. It never returns
// an empty list: a topic that yields nothing falls back to the generic set.
func (g *Generator) Generate(hw Homework) []Activity {
	g.mu.Lock()
	defer g.mu.Unlock()

	list := builders[Classify(hw)](g.rng)
	if len(list) == 0 {
		list = buildGeneric(g.rng)
	}
	for i := range list {
		list[i].ID = i + 1
	}
	return list
}
