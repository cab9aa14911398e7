package probe

import (
	"math/rand"

	"github.com/google/uuid"
)

// Generate builds n requests from a seeded source. A share of them, set by
// invalidRatio, carries thal=9 so strict and permissive modes can be compared.
func Generate(n int, seed int64, invalidRatio float64) []Request {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Request, n)
	for i := range out {
		p := Patient{
			Age:      float64(29 + rng.Intn(48)),
			Sex:      rng.Intn(2),
			CP:       rng.Intn(4),
			Trestbps: float64(94 + rng.Intn(106)),
			Chol:     float64(126 + rng.Intn(438)),
			FBS:      rng.Intn(2),
			RestECG:  rng.Intn(3),
			Thalach:  float64(71 + rng.Intn(132)),
			Exang:    rng.Intn(2),
			Oldpeak:  float64(rng.Intn(62)) / 10,
			Slope:    rng.Intn(3),
			CA:       rng.Intn(4),
			Thal:     1 + rng.Intn(3),
		}
		if rng.Float64() < invalidRatio {
			p.Thal = 9
		}
		out[i] = Request{ID: uuid.NewString(), Patient: p}
	}
	return out
}
