package merge_test

import (
	"testing"

	"github.com/okian/certify/internal/domain/merge"
	"github.com/okian/certify/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver_Resolve(t *testing.T) {
	Convey("Given a resolver with default options", t, func() {
		r := merge.NewResolver()

		Convey("When resolving a perfect score", func() {
			fields := r.Resolve(model.NewRecord("Dana", "Cohen", "Eng", 100, 100))

			Convey("Then every merge field is present", func() {
				names := []string{merge.FieldFullName, merge.FieldDepartment, merge.FieldPhone, merge.FieldEmail, merge.FieldBodyText}
				So(len(fields), ShouldEqual, len(names))
				for _, name := range names {
					_, ok := fields[name]
					So(ok, ShouldBeTrue)
				}
			})

			Convey("And the identity fields are derived from the record", func() {
				So(fields[merge.FieldFullName], ShouldEqual, "Dana Cohen")
				So(fields[merge.FieldDepartment], ShouldEqual, "Eng")
				So(fields[merge.FieldEmail], ShouldEqual, "Dana@gmail.com")
				So(fields[merge.FieldPhone], ShouldEqual, merge.DefaultPhone)
			})

			Convey("And the distinction message embeds the score to one decimal", func() {
				So(fields[merge.FieldBodyText], ShouldContainSubstring, "100.0")
				So(fields[merge.FieldBodyText], ShouldContainSubstring, "עברת בהצלחה")
				So(fields[merge.FieldBodyText], ShouldNotContainSubstring, merge.ScoreToken)
			})
		})

		Convey("When resolving a score exactly at the distinction threshold", func() {
			fields := r.Resolve(model.NewRecord("Avi", "Levi", "Ops", 90, 90))

			Convey("Then the standard message is used", func() {
				So(fields[merge.FieldBodyText], ShouldEqual, merge.DefaultStandardBody)
			})
		})

		Convey("When resolving a qualifying score below distinction", func() {
			fields := r.Resolve(model.NewRecord("Noa", "Bar", "QA", 70, 70))

			Convey("Then the standard message is used", func() {
				So(fields[merge.FieldBodyText], ShouldEqual, merge.DefaultStandardBody)
			})
		})

		Convey("When resolving twice", func() {
			rec := model.NewRecord("Dana", "Cohen", "Eng", 100, 100)
			a := r.Resolve(rec)
			b := r.Resolve(rec)
			a[merge.FieldPhone] = "changed"

			Convey("Then each call returns an independent map", func() {
				So(b[merge.FieldPhone], ShouldEqual, merge.DefaultPhone)
			})
		})
	})

	Convey("Given a resolver with custom options", t, func() {
		r := merge.NewResolver(
			merge.WithPhone("03-1234567"),
			merge.WithEmailDomain("example.org"),
			merge.WithBodies("Distinction with "+merge.ScoreToken+"!", "Thanks."),
		)

		Convey("Then the overrides are applied", func() {
			high := r.Resolve(model.NewRecord("dana", "cohen", "Eng", 95, 95))
			So(high[merge.FieldPhone], ShouldEqual, "03-1234567")
			So(high[merge.FieldEmail], ShouldEqual, "Dana@example.org")
			So(high[merge.FieldBodyText], ShouldEqual, "Distinction with 95.0!")

			low := r.Resolve(model.NewRecord("dana", "cohen", "Eng", 75, 75))
			So(low[merge.FieldBodyText], ShouldEqual, "Thanks.")
		})
	})

	Convey("Given empty option values", t, func() {
		r := merge.NewResolver(merge.WithPhone(""), merge.WithEmailDomain(""), merge.WithBodies("", ""))

		Convey("Then the defaults are kept", func() {
			f := r.Resolve(model.NewRecord("Dana", "Cohen", "Eng", 75, 75))
			So(f[merge.FieldPhone], ShouldEqual, merge.DefaultPhone)
			So(f[merge.FieldEmail], ShouldEqual, "Dana@"+merge.DefaultEmailDomain)
			So(f[merge.FieldBodyText], ShouldEqual, merge.DefaultStandardBody)
		})
	})
}
