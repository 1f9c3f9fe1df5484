package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gradecard/internal/config"
	"github.com/okian/gradecard/internal/domain/background"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"GRADECARD_CONFIG",
	"GRADECARD_ADDR",
	"GRADECARD_DATASET",
	"GRADECARD_ID_LENGTH",
	"GRADECARD_COHORT_SIZE",
	"GRADECARD_LOOKUP_DELAY_MS",
	"GRADECARD_PREF_DRIVER",
	"GRADECARD_CORS_ORIGINS",
	"GRADECARD_DEFAULT_LOCALE",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.IDLength, convey.ShouldEqual, 14)
				convey.So(cfg.LookupDelayMS, convey.ShouldEqual, 300)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
				convey.So(cfg.Backgrounds, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRADECARD_ADDR", ":8080")
			_ = os.Setenv("GRADECARD_ID_LENGTH", "8")
			_ = os.Setenv("GRADECARD_LOOKUP_DELAY_MS", "0")
			_ = os.Setenv("GRADECARD_PREF_DRIVER", "memory")
			_ = os.Setenv("GRADECARD_CORS_ORIGINS", "https://a.example,https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.IDLength, convey.ShouldEqual, 8)
				convey.So(cfg.LookupDelayMS, convey.ShouldEqual, 0)
				convey.So(cfg.PrefDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble,
					[]string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
dataset: "https://example.com/data.json"
cohort_size: 120
default_locale: zh
backgrounds:
  - id: one
    file: one.png
    name: One
    color: "#000000"
  - id: two
    file: two.png
`)
			_ = os.Setenv("GRADECARD_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values replace the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Dataset, convey.ShouldEqual, "https://example.com/data.json")
				convey.So(cfg.CohortSize, convey.ShouldEqual, 120)
				convey.So(cfg.DefaultLocale, convey.ShouldEqual, "zh")
				convey.So(cfg.Backgrounds, convey.ShouldResemble, []background.Entry{
					{ID: "one", File: "one.png", Name: "One", Color: "#000000"},
					{ID: "two", File: "two.png"},
				})
				convey.So(cfg.IDLength, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, "addr: \":9090\"\ncohort_size: 120\n")
			_ = os.Setenv("GRADECARD_CONFIG", path)
			_ = os.Setenv("GRADECARD_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CohortSize, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := writeConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("GRADECARD_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GRADECARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("GRADECARD_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GRADECARD_ID_LENGTH", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
