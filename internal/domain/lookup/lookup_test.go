package lookup_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

// countingStore is a map-backed Reader that counts Get calls.
type countingStore struct {
	records map[string]record.Record
	gets    int
}

func (c *countingStore) Get(id string) (record.Record, bool) {
	c.gets++
	r, ok := c.records[id]
	return r, ok
}

func newStore() *countingStore {
	return &countingStore{records: map[string]record.Record{
		"20231000000001": {
			ID:              "20231000000001",
			Rank:            5,
			WeightedAverage: 88.5,
			YearTwoScore:    90.1,
			StudentType:     record.Transfer,
		},
		"20231000000002": {
			ID:              "20231000000002",
			Rank:            1,
			WeightedAverage: 93.4,
			YearOneScore:    record.Score(94.1),
			YearTwoScore:    92.6,
			StudentType:     record.Regular,
		},
	}}
}

func reasonOf(err error) lookup.Reason {
	r, _ := lookup.ReasonOf(err)
	return r
}

func TestService_Find(t *testing.T) {
	Convey("Given a lookup service over a small store", t, func() {
		store := newStore()
		svc := lookup.New(store)

		Convey("When the id is present", func() {
			rec, err := svc.Find("20231000000001")

			Convey("Then it should return the stored record", func() {
				So(err, ShouldBeNil)
				So(rec, ShouldResemble, store.records["20231000000001"])
				So(rec.HasYearOne(), ShouldBeFalse)
			})
		})

		Convey("When the id is surrounded by whitespace", func() {
			rec, err := svc.Find("  20231000000002\n")
			So(err, ShouldBeNil)
			So(rec.Rank, ShouldEqual, 1)
		})

		Convey("When the input is too short", func() {
			_, err := svc.Find("123")

			Convey("Then it should fail validation without touching the store", func() {
				So(errors.Is(err, lookup.ErrValidation), ShouldBeTrue)
				So(reasonOf(err), ShouldEqual, lookup.ReasonTooShort)
				So(store.gets, ShouldEqual, 0)
			})
		})

		Convey("When the input contains a non-digit", func() {
			_, err := svc.Find("2023100000000a")
			So(reasonOf(err), ShouldEqual, lookup.ReasonBadFormat)
			So(store.gets, ShouldEqual, 0)
		})

		Convey("When the input is empty or blank", func() {
			for _, in := range []string{"", "   ", "\t\n"} {
				_, err := svc.Find(in)
				So(reasonOf(err), ShouldEqual, lookup.ReasonEmpty)
			}
			So(store.gets, ShouldEqual, 0)
		})

		Convey("When the input is longer than an id", func() {
			_, err := svc.Find("202310000000011")
			So(reasonOf(err), ShouldEqual, lookup.ReasonTooLong)
		})

		Convey("When an over-long input contains a non-digit", func() {
			for _, in := range []string{"20231000000000a", "2023100000000ab", "a2023100000000000"} {
				_, err := svc.Find(in)
				So(reasonOf(err), ShouldEqual, lookup.ReasonBadFormat)
			}
			So(store.gets, ShouldEqual, 0)
		})

		Convey("When the input has multi-byte characters", func() {
			Convey("Then length is counted in characters", func() {
				_, err := svc.Find("202310000000é")
				So(reasonOf(err), ShouldEqual, lookup.ReasonTooShort)

				_, err = svc.Find("２０２３１０００００００１")
				So(reasonOf(err), ShouldEqual, lookup.ReasonTooShort)

				_, err = svc.Find("2023100000000é")
				So(reasonOf(err), ShouldEqual, lookup.ReasonBadFormat)
			})
		})

		Convey("When a well-formed id is absent", func() {
			_, err := svc.Find("99999999999999")

			Convey("Then it should report not found as a plain error value", func() {
				So(err, ShouldEqual, lookup.ErrNotFound)
				So(errors.Is(err, lookup.ErrValidation), ShouldBeFalse)
				So(store.gets, ShouldEqual, 1)
			})
		})

		Convey("When finding the same input twice", func() {
			for _, in := range []string{"20231000000002", "99999999999999", "12", "abcdefghijklmn"} {
				r1, err1 := svc.Find(in)
				r2, err2 := svc.Find(in)
				So(r1, ShouldResemble, r2)
				So(errors.Is(err1, lookup.ErrValidation), ShouldEqual, errors.Is(err2, lookup.ErrValidation))
				So(reasonOf(err1), ShouldEqual, reasonOf(err2))
				So(err1 == lookup.ErrNotFound, ShouldEqual, err2 == lookup.ErrNotFound)
			}
		})
	})
}

func TestService_ValidationProperties(t *testing.T) {
	Convey("Given a lookup service with the default id length", t, func() {
		svc := lookup.New(newStore())

		Convey("Then every shorter digit string is too short", func() {
			for n := 1; n < lookup.DefaultIDLength; n++ {
				_, err := svc.Find(strings.Repeat("7", n))
				So(reasonOf(err), ShouldEqual, lookup.ReasonTooShort)
			}
		})

		Convey("And every full-length input with a non-digit is bad format", func() {
			base := strings.Repeat("1", lookup.DefaultIDLength)
			for i := 0; i < lookup.DefaultIDLength; i++ {
				for _, c := range []string{"a", "-", " ", "x"} {
					in := base[:i] + c + base[i+1:]
					if strings.TrimSpace(in) != in {
						continue
					}
					_, err := svc.Find(in)
					So(reasonOf(err), ShouldEqual, lookup.ReasonBadFormat)
				}
			}
		})

		Convey("And every stored id resolves to its record", func() {
			store := newStore()
			s := lookup.New(store)
			for id, want := range store.records {
				got, err := s.Find(id)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}
		})
	})

	Convey("Given a lookup service with a custom id length", t, func() {
		svc := lookup.New(newStore(), lookup.WithIDLength(8))

		Convey("Then the configured length is enforced", func() {
			So(svc.IDLength(), ShouldEqual, 8)
			_, err := svc.Find("1234567")
			So(reasonOf(err), ShouldEqual, lookup.ReasonTooShort)
			_, err = svc.Find("12345678")
			So(err, ShouldEqual, lookup.ErrNotFound)
		})

		Convey("And a non-positive length keeps the default", func() {
			So(lookup.New(newStore(), lookup.WithIDLength(0)).IDLength(), ShouldEqual, lookup.DefaultIDLength)
		})
	})
}
