package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gradecard/internal/smoketest"
	"github.com/okian/gradecard/pkg/logger"
)

const dataset = `{"20230000000001": {"rank": 1, "weighted_average": 90, "year_one_score": 90, "year_two_score": 90, "student_type": "regular"}}`

// fakeService answers like a service holding dataset.
func fakeService() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
	mux.HandleFunc("/api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch id := r.PathValue("id"); {
		case id == "20230000000001":
			_, _ = w.Write([]byte(`{"student_id":"20230000000001","rank":1,"scores":[{"key":"year_one"},{"key":"year_two"}]}`))
		case len(id) < 14:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"too_short"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found"}`))
		}
	})
	return mux
}

func TestSmokeCommand(t *testing.T) {
	Convey("Given a service and its dataset", t, func() {
		srv := httptest.NewServer(fakeService())
		defer srv.Close()
		path := filepath.Join(t.TempDir(), "data.json")
		So(os.WriteFile(path, []byte(dataset), 0o600), ShouldBeNil)

		Convey("When the command runs with JSON output", func() {
			var out bytes.Buffer
			cmd := newCommand(logger.Nop())
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--url", srv.URL, "--dataset", path, "--workers", "1", "--json"})
			err := cmd.ExecuteContext(context.Background())

			Convey("Then it passes and prints the stats", func() {
				So(err, ShouldBeNil)
				var stats smoketest.Stats
				So(json.Unmarshal(out.Bytes(), &stats), ShouldBeNil)
				So(stats.Checked, ShouldEqual, 3)
				So(stats.Passed, ShouldEqual, 3)
			})
		})

		Convey("When the command runs with the text summary", func() {
			var out bytes.Buffer
			cmd := newCommand(logger.Nop())
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--url", srv.URL, "--dataset", path})

			Convey("Then the summary is printed", func() {
				So(cmd.ExecuteContext(context.Background()), ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "3 checks, 3 passed, 0 failed")
			})
		})
	})
}
