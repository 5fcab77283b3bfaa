package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"csr-pipeline/internal/communityarea"
	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/servicerequest"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RawFileName is the interchange file written and uploaded by each run.
const RawFileName = "csr_raw.csv"

// Source produces the raw extract.
type Source interface {
	Extract(ctx context.Context) ([]servicerequest.RawRecord, error)
}

// Uploader stages a local file in object storage.
type Uploader interface {
	Upload(ctx context.Context, localPath, name string) (string, error)
}

// Warehouse persists the raw, reference and output tables.
type Warehouse interface {
	LoadRaw(ctx context.Context, records []servicerequest.RawRecord) error
	LoadCategories(ctx context.Context, mapping servicerequest.CategoryMapping) error
	LoadCommunityAreas(ctx context.Context, areas []communityarea.Area) error
	BackupResolved(ctx context.Context) error
	LoadResolved(ctx context.Context, records []servicerequest.ResolvedRecord) error
	LoadDates(ctx context.Context, rows []servicerequest.DateDimensionRow) error
}

// Runner executes one weekly job end to end.
type Runner struct {
	Source    Source
	Uploader  Uploader // optional
	Warehouse Warehouse
	Mapping   servicerequest.CategoryMapping
	Areas     []communityarea.Area // optional
	DataPath  string
	Options   servicerequest.Options
}

// Summary describes a finished run.
type Summary struct {
	RunID     string                `json:"runId"`
	Extracted int                   `json:"extracted"`
	ObjectKey string                `json:"objectKey,omitempty"`
	Report    servicerequest.Report `json:"report"`
	Took      time.Duration         `json:"took"`
}

// Run extracts, stages, loads and transforms. The first failing step aborts the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	logger := log.With().Str("run", sum.RunID).Logger()
	logger.Info().Msg("Starting pipeline run")

	var records []servicerequest.RawRecord
	if err := step(logger, "extract", func() (err error) {
		records, err = r.Source.Extract(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	sum.Extracted = len(records)

	rawPath := filepath.Join(r.DataPath, RawFileName)
	if err := step(logger, "write-raw", func() error {
		return extract.SaveRawCSV(rawPath, records)
	}); err != nil {
		return nil, err
	}

	if r.Uploader != nil {
		if err := step(logger, "upload", func() (err error) {
			sum.ObjectKey, err = r.Uploader.Upload(ctx, rawPath, RawFileName)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := step(logger, "load-raw", func() error {
		return r.Warehouse.LoadRaw(ctx, records)
	}); err != nil {
		return nil, err
	}
	if err := step(logger, "load-categories", func() error {
		return r.Warehouse.LoadCategories(ctx, r.Mapping)
	}); err != nil {
		return nil, err
	}
	if r.Areas != nil {
		if err := step(logger, "load-community-areas", func() error {
			return r.Warehouse.LoadCommunityAreas(ctx, r.Areas)
		}); err != nil {
			return nil, err
		}
	}

	var result *servicerequest.Result
	if err := step(logger, "transform", func() (err error) {
		result, err = servicerequest.Process(ctx, records, r.Mapping, r.Options)
		return err
	}); err != nil {
		return nil, err
	}
	sum.Report = result.Report

	if err := step(logger, "backup", func() error {
		return r.Warehouse.BackupResolved(ctx)
	}); err != nil {
		return nil, err
	}
	if err := step(logger, "load-resolved", func() error {
		return r.Warehouse.LoadResolved(ctx, result.Resolved)
	}); err != nil {
		return nil, err
	}
	if err := step(logger, "load-dates", func() error {
		return r.Warehouse.LoadDates(ctx, result.Dates)
	}); err != nil {
		return nil, err
	}

	sum.Took = time.Since(start)
	logger.Info().Dur("took", sum.Took).Int("extracted", sum.Extracted).Msg("Pipeline run complete")
	return sum, nil
}

func step(logger zerolog.Logger, name string, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		logger.Error().Err(err).Str("step", name).Dur("took", time.Since(start)).Msg("Pipeline step failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Info().Str("step", name).Dur("took", time.Since(start)).Msg("Pipeline step done")
	return nil
}
