package repository

import (
	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/pkg/logger"
)

// Option applies a configuration option to Load.
type Option func(*loadOptions)

type loadOptions struct {
	cohortSize int
	idLength   int
	logger     logger.Logger
}

// WithCohortSize bounds ranks to 1..n. Zero means the record count.
func WithCohortSize(n int) Option {
	return func(o *loadOptions) {
		if n > 0 {
			o.cohortSize = n
		}
	}
}

// WithIDLength sets the identifier length every dataset key must have.
// The default is lookup.DefaultIDLength.
func WithIDLength(n int) Option {
	return func(o *loadOptions) {
		if n > 0 {
			o.idLength = n
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l logger.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func (o loadOptions) keyChecker() *lookup.Service {
	return lookup.New(nil, lookup.WithIDLength(o.idLength))
}
