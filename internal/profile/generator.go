// Package profile generates the mock profiles that populate a deck.
package profile

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/domain"
)

const (
	DefaultCount = 12
	MaxCount     = 50

	minImages = 3
	maxImages = 6
	minAge    = 18
	ageSpan   = 22
	tagCount  = 4
)

// StdRNG is the production RNG backed by math/rand/v2.
type StdRNG struct{}

func (StdRNG) Intn(n int) int { return rand.IntN(n) }

// Generator implements domain.ProfileSource from fixed name, city, job, bio and
// tag tables.
type Generator struct {
	rng   domain.RNG
	clock clockwork.Clock
}

func NewGenerator(rng domain.RNG, clock clockwork.Clock) *Generator {
	if rng == nil {
		rng = StdRNG{}
	}
	return &Generator{rng: rng, clock: clock}
}

// Generate returns count fresh profiles. A non-positive count yields DefaultCount.
func (g *Generator) Generate(count int) []domain.Profile {
	if count <= 0 {
		count = DefaultCount
	}

	stamp := strconv.FormatInt(g.clock.Now().UnixMilli(), 36)
	profiles := make([]domain.Profile, 0, count)
	for i := range count {
		p, err := domain.NewProfile(domain.Profile{
			ID:     fmt.Sprintf("p_%d_%s", i, stamp),
			Name:   g.sample(firstNames),
			Age:    minAge + g.rng.Intn(ageSpan),
			City:   g.sample(cities),
			Title:  g.sample(jobs),
			Bio:    g.sample(bios),
			Tags:   g.pick(tags, tagCount),
			Images: g.images(),
		})
		if err != nil {
			slog.Error("Generated profile failed validation", "index", i, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func (g *Generator) sample(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func (g *Generator) images() []string {
	n := minImages + g.rng.Intn(maxImages-minImages+1)
	seeds := g.pick(unsplashSeeds, n)
	urls := make([]string, len(seeds))
	for i, seed := range seeds {
		urls[i] = imageURL(seed)
	}
	return urls
}

// pick draws n distinct values with a partial Fisher-Yates shuffle.
func (g *Generator) pick(values []string, n int) []string {
	n = min(n, len(values))
	pool := make([]string, len(values))
	copy(pool, values)
	for i := range n {
		j := i + g.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func imageURL(seed string) string {
	return "https://images.unsplash.com/photo-" + seed + "?auto=format&fit=crop&w=1200&q=80"
}
