package record_test

import (
	"errors"
	"testing"

	"github.com/okian/gradecard/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStudentType(t *testing.T) {
	Convey("Given student type labels", t, func() {
		Convey("Then canonical names should parse", func() {
			st, err := record.ParseStudentType("regular")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, record.Regular)

			st, err = record.ParseStudentType(" Transfer ")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, record.Transfer)
		})

		Convey("And legacy labels should parse", func() {
			st, err := record.ParseStudentType("完整")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, record.Regular)

			st, err = record.ParseStudentType("转入")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, record.Transfer)
		})

		Convey("And unknown labels should fail", func() {
			_, err := record.ParseStudentType("visiting")
			So(errors.Is(err, record.ErrUnknownStudentType), ShouldBeTrue)
		})
	})
}

func TestRecord_Validate(t *testing.T) {
	Convey("Given records", t, func() {
		regular := record.Record{
			ID:              "20231000000002",
			Rank:            1,
			WeightedAverage: 91.2,
			YearOneScore:    record.Score(92),
			YearTwoScore:    90.3,
			StudentType:     record.Regular,
		}
		transfer := record.Record{
			ID:              "20231000000001",
			Rank:            5,
			WeightedAverage: 88.5,
			YearTwoScore:    90.1,
			StudentType:     record.Transfer,
		}

		Convey("Then well-formed records should pass", func() {
			So(regular.Validate(), ShouldBeNil)
			So(transfer.Validate(), ShouldBeNil)
			So(regular.HasYearOne(), ShouldBeTrue)
			So(transfer.HasYearOne(), ShouldBeFalse)
		})

		Convey("When a regular student lacks a year-one score", func() {
			regular.YearOneScore = nil
			So(errors.Is(regular.Validate(), record.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("When a transfer student has a year-one score", func() {
			transfer.YearOneScore = record.Score(70)
			So(errors.Is(transfer.Validate(), record.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("When the rank is not positive", func() {
			regular.Rank = 0
			So(errors.Is(regular.Validate(), record.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("When the id is blank", func() {
			regular.ID = "  "
			So(errors.Is(regular.Validate(), record.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("When the student type is unknown", func() {
			regular.StudentType = "visiting"
			So(errors.Is(regular.Validate(), record.ErrInvalidRecord), ShouldBeTrue)
		})
	})
}
