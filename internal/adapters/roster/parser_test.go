package roster_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/okian/certify/internal/adapters/roster"
	"github.com/okian/certify/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const header = "FirstName,LastName,Department,Theory,Practical\n"

func collect(p *roster.Parser) []model.Record {
	return slices.Collect(p.Records())
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestParser_Records(t *testing.T) {
	Convey("Given a roster with a header and one valid line", t, func() {
		p := roster.NewParser(strings.NewReader(header + "Dana,Cohen,Eng,100,100\n"))
		got := collect(p)

		Convey("Then the header is skipped and the line becomes a record", func() {
			So(len(got), ShouldEqual, 1)
			So(got[0].IdentityKey(), ShouldEqual, "Dana Cohen")
			So(got[0].Department(), ShouldEqual, "Eng")
			So(got[0].FinalScore(), ShouldAlmostEqual, 100.0, 1e-9)
			So(got[0].Line(), ShouldEqual, 2)
			So(p.Err(), ShouldBeNil)
		})
	})

	Convey("Given structurally broken lines", t, func() {
		input := header +
			"Dana,Cohen,Eng,100\n" + // four columns
			",Cohen,Eng,90,90\n" + // empty given name
			"   ,Cohen,Eng,90,90\n" + // blank given name
			"\n" +
			"Avi,Levi,Ops,80,80,extra,columns\n"
		p := roster.NewParser(strings.NewReader(input))
		got := collect(p)

		Convey("Then they are dropped silently and trailing columns are ignored", func() {
			So(len(got), ShouldEqual, 1)
			So(got[0].IdentityKey(), ShouldEqual, "Avi Levi")
			So(p.Err(), ShouldBeNil)
		})

		Convey("And the stats account for every data line", func() {
			So(p.Stats(), ShouldResemble, roster.Stats{Lines: 5, Accepted: 1, Rejected: 4})
		})
	})

	Convey("Given non-numeric score columns", t, func() {
		input := header +
			"Dana,Cohen,Eng,abc,100\n" +
			"Avi,Levi,Ops,85.5,90\n" +
			"Noa,Bar,QA, 75 , 80 \n"

		Convey("When parsing leniently", func() {
			got := collect(roster.NewParser(strings.NewReader(input)))

			Convey("Then unparsable scores become zero and decimals are accepted", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].TheoryScore(), ShouldEqual, 0)
				So(got[0].FinalScore(), ShouldAlmostEqual, 60.0, 1e-9)
				So(got[1].TheoryScore(), ShouldEqual, 85.5)
				So(got[2].TheoryScore(), ShouldEqual, 75)
			})
		})

		Convey("When parsing strictly", func() {
			p := roster.NewParser(strings.NewReader(input), roster.WithStrictScores(true))
			got := collect(p)

			Convey("Then only integer scores are accepted", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].IdentityKey(), ShouldEqual, "Noa Bar")
				So(got[0].PracticalScore(), ShouldEqual, 80)
				So(p.Stats().Rejected, ShouldEqual, 2)
			})
		})
	})

	Convey("Given NaN and infinite scores in lenient mode", t, func() {
		got := collect(roster.NewParser(strings.NewReader(header + "Dana,Cohen,Eng,NaN,Inf\n")))

		Convey("Then they are treated as zero", func() {
			So(len(got), ShouldEqual, 1)
			So(got[0].FinalScore(), ShouldEqual, 0)
		})
	})

	Convey("Given CRLF line endings and a custom delimiter", t, func() {
		input := "a;b;c;d;e\r\nDana;Cohen;Eng;90;95\r\n"
		got := collect(roster.NewParser(strings.NewReader(input), roster.WithDelimiter(";"), roster.WithStrictScores(true)))

		Convey("Then the line is parsed cleanly", func() {
			So(len(got), ShouldEqual, 1)
			So(got[0].PracticalScore(), ShouldEqual, 95)
		})
	})

	Convey("Given an input with only a header", t, func() {
		p := roster.NewParser(strings.NewReader(header))

		Convey("Then no records are produced", func() {
			So(collect(p), ShouldBeEmpty)
			So(p.Stats().Lines, ShouldEqual, 0)
		})
	})

	Convey("Given a parser that was already consumed", t, func() {
		p := roster.NewParser(strings.NewReader(header + "Dana,Cohen,Eng,100,100\n"))
		first := collect(p)
		second := collect(p)

		Convey("Then the second pass yields nothing", func() {
			So(len(first), ShouldEqual, 1)
			So(second, ShouldBeEmpty)
		})
	})

	Convey("Given a consumer that stops early", t, func() {
		p := roster.NewParser(strings.NewReader(header + "A,A,x,1,1\nB,B,x,1,1\nC,C,x,1,1\n"))
		for range p.Records() {
			break
		}

		Convey("Then reading stops after the first record", func() {
			So(p.Stats().Accepted, ShouldEqual, 1)
			So(p.Stats().Lines, ShouldEqual, 1)
		})
	})

	Convey("Given an oversized line between two valid rows", t, func() {
		input := header +
			"Dana,Cohen,Eng,100,100\n" +
			strings.Repeat("x", 2<<20) + "\n" +
			"Avi,Levi,Ops,80,80"
		p := roster.NewParser(strings.NewReader(input))
		got := collect(p)

		Convey("Then only that line is rejected and parsing carries on", func() {
			So(p.Err(), ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].IdentityKey(), ShouldEqual, "Dana Cohen")
			So(got[1].IdentityKey(), ShouldEqual, "Avi Levi")
			So(got[1].Line(), ShouldEqual, 4)
			So(p.Stats(), ShouldResemble, roster.Stats{Lines: 3, Accepted: 2, Rejected: 1})
		})
	})

	Convey("Given strict scores outside the 32-bit integer range", t, func() {
		input := header +
			"Dana,Cohen,Eng,99999999999,100\n" +
			"Avi,Levi,Ops,80,-2147483649\n" +
			"Edge,Case,QA,2147483647,+70\n"
		p := roster.NewParser(strings.NewReader(input), roster.WithStrictScores(true))
		got := collect(p)

		Convey("Then they are rejected like any unparsable score", func() {
			So(len(got), ShouldEqual, 1)
			So(got[0].IdentityKey(), ShouldEqual, "Edge Case")
			So(got[0].TheoryScore(), ShouldEqual, 2147483647)
			So(got[0].PracticalScore(), ShouldEqual, 70)
			So(p.Stats().Rejected, ShouldEqual, 2)
		})
	})

	Convey("Given a reader that fails", t, func() {
		boom := errors.New("disk gone")
		p := roster.NewParser(failingReader{err: boom})

		Convey("Then the error is reported after iteration", func() {
			So(collect(p), ShouldBeEmpty)
			So(errors.Is(p.Err(), boom), ShouldBeTrue)
		})
	})
}
