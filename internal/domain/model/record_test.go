package model_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	model "github.com/okian/cardio/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func decodeJSON(body string) map[string]any {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		panic(err)
	}
	return raw
}

const validBody = `{"age":63,"trestbps":145,"chol":233,"thalach":150,"oldpeak":2.3,
	"sex":1,"cp":3,"fbs":1,"restecg":0,"exang":0,"slope":0,"ca":0,"thal":1}`

func TestDecode(t *testing.T) {
	convey.Convey("Given a JSON patient record", t, func() {
		convey.Convey("When every field is a number", func() {
			rec, err := model.Decode(decodeJSON(validBody))

			convey.Convey("Then it decodes into typed fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Age, convey.ShouldEqual, 63.0)
				convey.So(rec.Oldpeak, convey.ShouldEqual, 2.3)
				convey.So(rec.Sex, convey.ShouldEqual, 1)
				convey.So(rec.CP, convey.ShouldEqual, 3)
				convey.So(rec.Thal, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When numbers arrive as strings", func() {
			raw := decodeJSON(validBody)
			raw["age"] = " 63.5 "
			raw["cp"] = "2"

			rec, err := model.Decode(raw)

			convey.Convey("Then they are coerced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Age, convey.ShouldEqual, 63.5)
				convey.So(rec.CP, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a categorical value has a fraction", func() {
			raw := decodeJSON(validBody)
			raw["ca"] = json.Number("2.9")

			rec, err := model.Decode(raw)

			convey.Convey("Then it is truncated toward zero", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.CA, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When thal is missing", func() {
			raw := decodeJSON(validBody)
			delete(raw, "thal")

			_, err := model.Decode(raw)

			convey.Convey("Then a missing-field error names it", func() {
				convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)
				var fe *model.FieldError
				convey.So(errors.As(err, &fe), convey.ShouldBeTrue)
				convey.So(fe.Field, convey.ShouldEqual, "thal")
			})
		})

		convey.Convey("When a field cannot be coerced", func() {
			cases := map[string]any{
				"age":   "sixty",
				"chol":  nil,
				"sex":   true,
				"cp":    "1.5",
				"slope": []any{1},
			}
			for field, value := range cases {
				raw := decodeJSON(validBody)
				raw[field] = value
				_, err := model.Decode(raw)
				convey.So(errors.Is(err, model.ErrInvalidValue), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldStartWith, field+":")
			}
		})

		convey.Convey("When extra keys are present", func() {
			raw := decodeJSON(validBody)
			raw["target"] = json.Number("1")
			raw["note"] = "ignored"

			_, err := model.Decode(raw)

			convey.Convey("Then they are ignored", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestRecord_Validate(t *testing.T) {
	convey.Convey("Given a decoded record", t, func() {
		rec, err := model.Decode(decodeJSON(validBody))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When all codes are declared", func() {
			convey.So(rec.Validate(), convey.ShouldBeNil)
			convey.So(rec.OutOfDomain(), convey.ShouldBeEmpty)
		})

		convey.Convey("When thal is 9", func() {
			rec.Thal = 9
			err := rec.Validate()

			convey.Convey("Then validation reports an out-of-domain field", func() {
				convey.So(errors.Is(err, model.ErrOutOfDomain), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "thal")
				convey.So(rec.OutOfDomain(), convey.ShouldResemble, []string{"thal"})
			})
		})
	})
}
