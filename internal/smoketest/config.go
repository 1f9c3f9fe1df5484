// Package smoketest queries a running gradecard service for every record of
// a dataset and checks the returned cards against it.
package smoketest

import (
	"runtime"
	"time"

	"github.com/okian/gradecard/internal/domain/lookup"
)

// Defaults for Config.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Dataset  string        // Dataset file or URL the service was started with
	Workers  int           // Number of concurrent lookups
	Timeout  time.Duration // HTTP request timeout
	IDLength int           // Identifier length the service enforces
	Lang     string        // Locale requested with each lookup
	Verbose  bool          // Log every checked id
}

// DefaultConfig returns a Config pointing at a local service.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Dataset:  "data.json",
		Workers:  runtime.NumCPU() * 2,
		Timeout:  DefaultTimeout,
		IDLength: lookup.DefaultIDLength,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.IDLength <= 0 {
		c.IDLength = d.IDLength
	}
	return c
}

// Failure is one check that did not hold.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Stats summarizes a run.
type Stats struct {
	RunID     string        `json:"run_id"`
	Records   int           `json:"records"`
	Checked   int           `json:"checked"`
	Passed    int           `json:"passed"`
	Failures  []Failure     `json:"failures,omitempty"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether every check passed.
func (s *Stats) OK() bool { return len(s.Failures) == 0 }
