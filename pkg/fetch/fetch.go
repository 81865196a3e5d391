//go:generate mockgen -destination=./mocks/fetch.go . IndexResolver,SegmentRetriever,Finalizer

// Package fetch ties index resolution, filtering, download and conversion
// together into a single retrieval run.
package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/download"
	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
	"github.com/openclimdata/subgrib/pkg/inventory"
	"github.com/openclimdata/subgrib/pkg/model"
)

// IndexResolver is the subset of the inventory resolver used here.
type IndexResolver interface {
	Fetch(ctx context.Context, req *model.Request) ([]model.Record, error)
}

// SegmentRetriever assembles the listed segments into one artifact at dest.
type SegmentRetriever interface {
	Retrieve(ctx context.Context, records []model.Record, dest string) error
}

// Finalizer converts the assembled artifact into its final container format.
type Finalizer interface {
	ToNetCDF(ctx context.Context, src, dest string, kind int, ensemble bool) error
}

// Fetcher drives a full retrieval: resolve, filter, download, convert.
type Fetcher struct {
	Resolver  IndexResolver
	Retriever SegmentRetriever
	Converter Finalizer
}

// Options control a single retrieval run.
type Options struct {
	// Output is the destination path of the final artifact.
	Output string
	// Overwrite allows replacing an existing file at Output.
	Overwrite bool
}

// Result describes a completed retrieval.
type Result struct {
	// Path is the final artifact on disk.
	Path string
	// Records are the segments the artifact was assembled from, in
	// artifact order.
	Records []model.Record
	// FileCounts maps each source data file to the number of segments
	// taken from it.
	FileCounts map[string]int
	// Bytes is the assembled artifact size.
	Bytes int64
}

// New constructs a Fetcher from existing components. Helper for wiring.
func New(resolver IndexResolver, retriever SegmentRetriever, converter Finalizer) *Fetcher {
	return &Fetcher{Resolver: resolver, Retriever: retriever, Converter: converter}
}

// Run executes one retrieval end to end. The request is validated before any
// network traffic; an existing output aborts the run unless opts.Overwrite is
// set. A request that matches nothing in the archive still produces the
// artifact, just empty.
func (f *Fetcher) Run(ctx context.Context, req *model.Request, opts Options) (*Result, error) {
	if f.Resolver == nil || f.Retriever == nil {
		return nil, errors.Wrap(errors.ErrConfiguration, "fetcher is not fully wired")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.Output == "" {
		return nil, errors.Wrap(errors.ErrConfiguration, "no output path given")
	}
	if !opts.Overwrite {
		if _, err := os.Stat(opts.Output); err == nil {
			return nil, errors.Wrapf(errors.ErrOutputExists, "%s", opts.Output)
		}
	}
	toNetCDF := req.OutputFormat() == model.FormatNetCDF
	if toNetCDF && f.Converter == nil {
		return nil, errors.Wrap(errors.ErrConverterMissing, "no converter configured")
	}

	records, err := f.Resolver.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	matched := inventory.Filter(records, req)
	if len(matched) == 0 {
		logger.Warn("request matched no fields, writing empty artifact",
			logger.Fields{"request": req.String()})
	}

	// Conversion runs through temporary files in the output directory so
	// that a failed run never leaves a partial or intermediate artifact at
	// a caller-visible path.
	gribPath := opts.Output
	var ncPath string
	if toNetCDF {
		dir := filepath.Dir(opts.Output)
		if err := fsutil.EnsureDir(dir); err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp(dir, ".subgrib-*.grib")
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPath, "creating intermediate file: %v", err)
		}
		gribPath = tmp.Name()
		_ = tmp.Close()
		ncPath = gribPath + ".nc"
		defer func() {
			_ = os.Remove(gribPath)
			_ = os.Remove(ncPath)
		}()
	}

	if err := f.Retriever.Retrieve(ctx, matched, gribPath); err != nil {
		return nil, err
	}

	if toNetCDF {
		ensemble := req.Type == model.TypeEnsemble
		if err := f.Converter.ToNetCDF(ctx, gribPath, ncPath, req.Kind, ensemble); err != nil {
			return nil, err
		}
		if err := fsutil.Move(ncPath, opts.Output); err != nil {
			return nil, errors.Wrapf(errors.ErrConversion, "finalizing %s: %v", opts.Output, err)
		}
	}

	sidecar := download.Sidecar{Area: req.Area, Records: matched}
	if err := download.WriteSidecar(download.SidecarPath(opts.Output), sidecar); err != nil {
		return nil, err
	}

	result := &Result{
		Path:       opts.Output,
		Records:    matched,
		FileCounts: make(map[string]int, 4),
	}
	for i := range matched {
		result.FileCounts[matched[i].Path]++
		result.Bytes += matched[i].Length
	}

	logger.Info("retrieval complete", logger.Fields{
		"output": opts.Output,
		"fields": len(matched),
		"bytes":  result.Bytes,
	})
	return result, nil
}
