package schema_test

import (
	"testing"

	"github.com/okian/cardio/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSchema_Domains(t *testing.T) {
	Convey("Given the schema registry", t, func() {
		Convey("Then every categorical feature has a declared domain", func() {
			for _, name := range schema.Categorical() {
				values, ok := schema.Domain(name)
				So(ok, ShouldBeTrue)
				So(values, ShouldNotBeEmpty)
			}
		})

		Convey("Then thal starts at 1 and ca stops at 3", func() {
			thal, _ := schema.Domain(schema.Thal)
			So(thal, ShouldResemble, []int{1, 2, 3})
			ca, _ := schema.Domain(schema.CA)
			So(ca, ShouldResemble, []int{0, 1, 2, 3})
		})

		Convey("Then continuous names have no domain", func() {
			_, ok := schema.Domain(schema.Age)
			So(ok, ShouldBeFalse)
			So(schema.IsContinuous(schema.Age), ShouldBeTrue)
			So(schema.IsCategorical(schema.Age), ShouldBeFalse)
		})

		Convey("Then returned domains cannot mutate the registry", func() {
			values, _ := schema.Domain(schema.Sex)
			values[0] = 42
			So(schema.Contains(schema.Sex, 0), ShouldBeTrue)
			So(schema.Contains(schema.Sex, 42), ShouldBeFalse)
		})

		Convey("Then fields list continuous before categorical", func() {
			fields := schema.Fields()
			So(len(fields), ShouldEqual, 13)
			So(fields[0], ShouldEqual, schema.Age)
			So(fields[4], ShouldEqual, schema.Oldpeak)
			So(fields[5], ShouldEqual, schema.Sex)
			So(fields[12], ShouldEqual, schema.Thal)
		})
	})
}
