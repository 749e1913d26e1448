package morph

import (
	"math"
	"math/rand"
)

// Color is a simple RGB triple in [0,1].
type Color struct {
	R, G, B float64
}

// Vec3 is a plain 3-component vector used for formation transforms.
type Vec3 struct {
	X, Y, Z float64
}

// Particle holds one particle's immutable base transform within a
// formation.
type Particle struct {
	Position Vec3
	Rotation Vec3
	Scale    float64
	Color    Color
}

// Formation is an immutable array of N particle base transforms. Once
// built it is never mutated; both the tree and scatter formations are
// read concurrently by every render tick (spec §5 "Shared-resource
// policy").
type Formation struct {
	Particles []Particle
}

// treePalette cycles green, gold, red across tree layers (spec §4.4).
var treePalette = []Color{
	{R: 0.13, G: 0.55, B: 0.13}, // green
	{R: 0.83, G: 0.69, B: 0.22}, // gold
	{R: 0.70, G: 0.13, B: 0.13}, // red
}

// FormationConfig holds the tunables that govern formation generation
// (spec §6).
type FormationConfig struct {
	ParticleCount int
	ScatterBounds float64
	TreeHeight    float64
	PhotoCount    int
	// TreeLayers is the number of concentric cone layers; not spec-named
	// directly but implied by "k concentric layers" in §4.4.
	TreeLayers int
	// Seed makes formation generation reproducible across runs, per
	// spec §4.4 "seeded deterministically so property tests are
	// reproducible".
	Seed int64
}

// DefaultFormationConfig returns the spec's calibrated defaults.
func DefaultFormationConfig() FormationConfig {
	return FormationConfig{
		ParticleCount: 800,
		ScatterBounds: 10.0,
		TreeHeight:    8.0,
		TreeLayers:    12,
		Seed:          1,
	}
}

// BuildTree generates the tree formation: a cone stratified into
// concentric layers, each holding a particle count proportional to its
// layer radius squared, positions jittered within the layer's disc
// (spec §4.4 "Formation generation (tree)").
func BuildTree(cfg FormationConfig) Formation {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := cfg.ParticleCount
	h := cfg.TreeHeight
	k := cfg.TreeLayers
	if k < 1 {
		k = 1
	}
	const baseRadius = 3.0

	particles := make([]Particle, 0, n)

	layerWeights := make([]float64, k)
	totalWeight := 0.0
	for j := 0; j < k; j++ {
		yj := h/2 - float64(j)*(h/float64(k))
		frac := 1 - yj/h
		if frac < 0 {
			frac = 0
		}
		radius := baseRadius * math.Pow(frac, 0.7)
		w := radius * radius
		layerWeights[j] = w
		totalWeight += w
	}

	assigned := 0
	for j := 0; j < k; j++ {
		yj := h/2 - float64(j)*(h/float64(k))
		frac := 1 - yj/h
		if frac < 0 {
			frac = 0
		}
		radius := baseRadius * math.Pow(frac, 0.7)

		nj := n
		if totalWeight > 0 {
			nj = int(math.Round(layerWeights[j] / totalWeight * float64(n)))
		}
		if j == k-1 {
			nj = n - assigned // soak up rounding remainder on the last layer
		}
		if nj < 0 {
			nj = 0
		}
		assigned += nj

		color := treePalette[j%len(treePalette)]

		for c := 0; c < nj && len(particles) < n; c++ {
			angle := rng.Float64() * 2 * math.Pi
			rr := radius * math.Sqrt(rng.Float64())
			jitter := (rng.Float64() - 0.5) * 0.1 * radius

			x := rr*math.Cos(angle) + jitter
			z := rr*math.Sin(angle) + jitter

			particles = append(particles, Particle{
				Position: Vec3{X: x, Y: yj, Z: z},
				Rotation: Vec3{X: 0, Y: angle, Z: 0},
				Scale:    0.6 + rng.Float64()*0.6,
				Color:    color,
			})
		}
	}

	// Pad to exactly n particles if layer rounding fell short (shouldn't
	// normally happen given the last-layer remainder fixup above).
	for len(particles) < n {
		particles = append(particles, Particle{
			Position: Vec3{Y: -h / 2},
			Scale:    0.6,
			Color:    treePalette[0],
		})
	}

	return Formation{Particles: particles[:n]}
}

// BuildScatter generates the scatter formation: positions sampled
// uniformly in a cube, with the first PhotoCount indices sampled in a
// smaller sub-cube so photo-bearing particles cluster near the origin
// (spec §4.4 "Formation (scatter)").
func BuildScatter(cfg FormationConfig) Formation {
	rng := rand.New(rand.NewSource(cfg.Seed + 1)) // distinct stream from the tree formation
	n := cfg.ParticleCount
	bounds := cfg.ScatterBounds
	photoBounds := 0.6 * bounds

	particles := make([]Particle, n)
	for i := 0; i < n; i++ {
		half := bounds
		if i < cfg.PhotoCount {
			half = photoBounds
		}
		particles[i] = Particle{
			Position: Vec3{
				X: (rng.Float64()*2 - 1) * half,
				Y: (rng.Float64()*2 - 1) * half,
				Z: (rng.Float64()*2 - 1) * half,
			},
			Rotation: Vec3{X: rng.Float64() * 2 * math.Pi, Y: rng.Float64() * 2 * math.Pi, Z: 0},
			Scale:    0.6 + rng.Float64()*0.6,
			Color:    treePalette[i%len(treePalette)],
		}
	}
	return Formation{Particles: particles}
}
