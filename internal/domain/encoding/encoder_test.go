package encoding_test

import (
	"math/rand"
	"testing"

	"github.com/okian/cardio/internal/domain/encoding"
	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRecord() model.Record {
	return model.Record{
		Age: 63, Trestbps: 145, Chol: 233, Thalach: 150, Oldpeak: 2.3,
		Sex: 1, CP: 3, FBS: 1, RestECG: 0, Exang: 0, Slope: 0, CA: 0, Thal: 1,
	}
}

func randomRecord(rng *rand.Rand, inDomain bool) model.Record {
	pick := func(feature string) int {
		values, _ := schema.Domain(feature)
		if !inDomain && rng.Intn(4) == 0 {
			return 7 + rng.Intn(5)
		}
		return values[rng.Intn(len(values))]
	}
	return model.Record{
		Age: 29 + rng.Float64()*48, Trestbps: 94 + rng.Float64()*106, Chol: 126 + rng.Float64()*438,
		Thalach: 71 + rng.Float64()*131, Oldpeak: rng.Float64() * 6.2,
		Sex: pick(schema.Sex), CP: pick(schema.CP), FBS: pick(schema.FBS), RestECG: pick(schema.RestECG),
		Exang: pick(schema.Exang), Slope: pick(schema.Slope), CA: pick(schema.CA), Thal: pick(schema.Thal),
	}
}

func indicatorSum(v encoding.Vector, feature string) float64 {
	values, _ := schema.Domain(feature)
	var sum float64
	for _, value := range values {
		x, ok := v.Get(encoding.ColumnName(feature, value))
		So(ok, ShouldBeTrue)
		sum += x
	}
	return sum
}

func TestEncode_OneHot(t *testing.T) {
	Convey("Given records whose categorical values are all declared", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("Then each categorical feature has exactly one indicator set", func() {
			for i := 0; i < 200; i++ {
				v := encoding.Encode(randomRecord(rng, true), nil)
				for _, feature := range schema.Categorical() {
					So(indicatorSum(v, feature), ShouldEqual, 1)
				}
				for _, x := range v.Values[len(schema.Continuous()):] {
					So(x == 0 || x == 1, ShouldBeTrue)
				}
			}
		})
	})

	Convey("Given the reference record", t, func() {
		v := encoding.Encode(sampleRecord(), nil)

		Convey("Then continuous values pass through and the right indicators are set", func() {
			age, _ := v.Get("age")
			So(age, ShouldEqual, 63)
			oldpeak, _ := v.Get("oldpeak")
			So(oldpeak, ShouldEqual, 2.3)
			cp3, _ := v.Get("cp_3")
			So(cp3, ShouldEqual, 1)
			cp0, _ := v.Get("cp_0")
			So(cp0, ShouldEqual, 0)
			thal1, _ := v.Get("thal_1")
			So(thal1, ShouldEqual, 1)
			So(v.Columns, ShouldResemble, encoding.DefaultOrdering())
		})
	})

	Convey("Given a record with thal out of domain", t, func() {
		rec := sampleRecord()
		rec.Thal = 9
		v := encoding.Encode(rec, nil)

		Convey("Then the thal block is all zero and nothing else changes", func() {
			So(indicatorSum(v, schema.Thal), ShouldEqual, 0)
			So(indicatorSum(v, schema.CP), ShouldEqual, 1)
			_, ok := v.Get("thal_9")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestEncode_KnownOrdering(t *testing.T) {
	Convey("Given a persisted ordering that differs from the default layout", t, func() {
		known := encoding.DefaultOrdering()
		rng := rand.New(rand.NewSource(11))
		rng.Shuffle(len(known), func(i, j int) { known[i], known[j] = known[j], known[i] })
		known = append(known, "ca_4", "thal_0")
		known = append(known[:3], known[4:]...) // drop one produced column

		Convey("When encoding arbitrary records against it", func() {
			Convey("Then column set and order always equal the ordering", func() {
				for i := 0; i < 200; i++ {
					v := encoding.Encode(randomRecord(rng, i%2 == 0), known)
					So(v.Columns, ShouldResemble, known)
					So(len(v.Values), ShouldEqual, len(known))
				}
			})

			Convey("Then columns the record cannot produce are zero", func() {
				rec := sampleRecord()
				rec.CA = 4
				v := encoding.Encode(rec, known)
				ca4, _ := v.Get("ca_4")
				So(ca4, ShouldEqual, 0)
				thal0, _ := v.Get("thal_0")
				So(thal0, ShouldEqual, 0)
			})
		})

		Convey("When the caller mutates the result", func() {
			v := encoding.Encode(sampleRecord(), known)
			v.Columns[0] = "mutated"

			Convey("Then the ordering itself is untouched", func() {
				So(known[0], ShouldNotEqual, "mutated")
			})
		})
	})
}

func TestDeriveOrdering(t *testing.T) {
	Convey("Given vectors with overlapping columns", t, func() {
		a := encoding.Vector{Columns: encoding.Ordering{"age", "sex_0"}, Values: []float64{1, 0}}
		b := encoding.Vector{Columns: encoding.Ordering{"age", "sex_1", "cp_0"}, Values: []float64{1, 1, 0}}

		Convey("Then the union keeps first-seen order", func() {
			So(encoding.DeriveOrdering([]encoding.Vector{a, b}), ShouldResemble,
				encoding.Ordering{"age", "sex_0", "sex_1", "cp_0"})
		})
	})

	Convey("Given vectors produced by Encode", t, func() {
		rng := rand.New(rand.NewSource(3))
		vectors := []encoding.Vector{encoding.Encode(randomRecord(rng, true), nil), encoding.Encode(randomRecord(rng, false), nil)}

		Convey("Then the derived ordering is the default layout", func() {
			derived := encoding.DeriveOrdering(vectors)
			So(derived.Equal(encoding.DefaultOrdering()), ShouldBeTrue)
			So(len(derived), ShouldEqual, 5+2+4+2+3+2+3+4+3)
		})
	})
}
