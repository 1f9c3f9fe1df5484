package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gradecard/internal/adapters/repository"
	"github.com/okian/gradecard/internal/domain/record"
	"github.com/okian/gradecard/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildDataset(t *testing.T) {
	Convey("Given two score sheets", t, func() {
		dir := t.TempDir()
		yearOne := writeFile(t, dir, "year1.csv", "20230000000001,90\n20230000000002,80\n20230000000009,70\n")
		yearTwo := writeFile(t, dir, "year2.csv", "\ufeff学号,课程成绩\n20230000000001,80\n20230000000002,95\n20230000000003,85.5\n")
		output := filepath.Join(dir, "data.json")

		Convey("When the command runs", func() {
			var out bytes.Buffer
			cmd := newCommand(logger.Nop())
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--year-one", yearOne, "--year-two", yearTwo, "-o", output, "--top", "2"})
			err := cmd.ExecuteContext(context.Background())

			Convey("Then the ranked dataset is written and loadable", func() {
				So(err, ShouldBeNil)

				store, err := repository.Load(context.Background(), repository.FileSource{Path: output})
				So(err, ShouldBeNil)
				So(store.Count(), ShouldEqual, 3)

				ranked := store.Ranked()
				So(ranked[0].ID, ShouldEqual, "20230000000002")
				So(ranked[1].ID, ShouldEqual, "20230000000003")
				So(ranked[1].StudentType, ShouldEqual, record.Transfer)
				So(ranked[1].WeightedAverage, ShouldEqual, 85.5)
				So(ranked[2].ID, ShouldEqual, "20230000000001")

				_, dropped := store.Get("20230000000009")
				So(dropped, ShouldBeFalse)
			})

			Convey("Then a summary is printed", func() {
				So(out.String(), ShouldContainSubstring, "students: 3 (regular 2, transfer 1)")
				So(out.String(), ShouldContainSubstring, "20230000000002")
			})
		})

		Convey("When an unknown format is requested", func() {
			cmd := newCommand(logger.Nop())
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--year-one", yearOne, "--year-two", yearTwo, "-o", output, "--format", "xml"})

			Convey("Then it fails before writing", func() {
				So(cmd.Execute(), ShouldNotBeNil)
				_, err := os.Stat(output)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When a sheet is missing", func() {
			cmd := newCommand(logger.Nop())
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--year-one", filepath.Join(dir, "nope.csv"), "--year-two", yearTwo, "-o", output})

			Convey("Then it fails", func() {
				So(cmd.Execute(), ShouldNotBeNil)
			})
		})
	})
}
