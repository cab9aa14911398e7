package service_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// syntheticRows returns patients whose label mostly follows chest pain type,
// max heart rate and exercise angina.
func syntheticRows(n int, seed int64) []model.Labeled {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]model.Labeled, n)
	for i := range rows {
		rec := model.Record{
			Age:      float64(29 + rng.Intn(48)),
			Trestbps: float64(94 + rng.Intn(106)),
			Chol:     float64(126 + rng.Intn(300)),
			Thalach:  float64(90 + rng.Intn(110)),
			Oldpeak:  float64(rng.Intn(40)) / 10,
			Sex:      rng.Intn(2),
			CP:       rng.Intn(4),
			FBS:      rng.Intn(2),
			RestECG:  rng.Intn(3),
			Exang:    rng.Intn(2),
			Slope:    rng.Intn(3),
			CA:       rng.Intn(4),
			Thal:     1 + rng.Intn(3),
		}
		score := 0.0
		if rec.CP > 0 {
			score++
		}
		if rec.Thalach > 150 {
			score++
		}
		if rec.Exang == 0 {
			score++
		}
		target := 0
		if score >= 2 {
			target = 1
		}
		if rng.Intn(20) == 0 {
			target = 1 - target
		}
		rows[i] = model.Labeled{Record: rec, Target: target}
	}
	return rows
}

func writeCSV(t *testing.T, rows []model.Labeled) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("age,sex,cp,trestbps,chol,fbs,restecg,thalach,exang,oldpeak,slope,ca,thal,target\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%g,%d,%d,%g,%g,%d,%d,%g,%d,%g,%d,%d,%d,%d\n",
			r.Age, r.Sex, r.CP, r.Trestbps, r.Chol, r.FBS, r.RestECG, r.Thalach, r.Exang, r.Oldpeak,
			r.Slope, r.CA, r.Thal, r.Target)
	}
	path := filepath.Join(t.TempDir(), "heart.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func referenceRecord() model.Record {
	return model.Record{
		Age: 63, Trestbps: 145, Chol: 233, Thalach: 150, Oldpeak: 2.3,
		Sex: 1, CP: 3, FBS: 1, RestECG: 0, Exang: 0, Slope: 0, CA: 0, Thal: 1,
	}
}
