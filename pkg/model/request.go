// Package model holds the value types shared across subgrib: the selection
// request describing what to retrieve and the inventory record describing
// one message inside a remote archive file.
package model

import (
	"fmt"
	"time"

	"github.com/openclimdata/subgrib/pkg/errors"
)

// Product identifies the archive product family.
type Product string

// Known products.
const (
	ProductAnalysis   Product = "analysis"
	ProductForecast   Product = "forecast"
	ProductReforecast Product = "reforecast"
)

// Level identifies the dataset subtype.
type Level string

// Known levels.
const (
	LevelSurface  Level = "sfc"
	LevelPressure Level = "pl"
	LevelEFI      Level = "efi"
)

// RunType distinguishes the high-resolution/control run from the ensemble.
// It is only meaningful for forecast and reforecast products.
type RunType string

// Known run types.
const (
	TypeHighRes  RunType = "hres"
	TypeEnsemble RunType = "ens"
)

// Format is the output container format.
type Format string

// Known output formats.
const (
	// FormatGRIB is the native archive format; the assembled artifact is
	// final as-is.
	FormatGRIB Format = "grib"
	// FormatNetCDF hands the assembled artifact to the external converter.
	FormatNetCDF Format = "nc"
)

// Area is a bounding box in degrees. Only meaningful together with a
// non-native output container; subgrib itself performs no spatial work and
// records the box for downstream extraction tooling.
type Area struct {
	North float64 `json:"north" yaml:"north"`
	West  float64 `json:"west" yaml:"west"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
}

// Request describes one retrieval operation. It is immutable once built;
// Validate must pass before any network access happens.
type Request struct {
	Product Product
	Level   Level
	Type    RunType

	// Dates are UTC calendar dates: initialization dates for forecast and
	// reforecast products, target dates for analysis.
	Dates []time.Time

	// Steps are forecast lead hours, or hours of day for analysis.
	// Empty means all available.
	Steps []int

	// Params are short parameter codes ("2t", "cp", ...). Empty means all.
	Params []string

	// Members are ensemble member numbers; 0 is the control run.
	// Empty means all available.
	Members []int

	Area *Area

	Format Format
	// Kind is passed through to the external converter for NetCDF output.
	Kind int
}

// Reforecasts are produced on two fixed weekdays only.
var reforecastWeekdays = map[time.Weekday]bool{
	time.Monday:   true,
	time.Thursday: true,
}

// Validate checks the request for contradictions. All failures wrap
// errors.ErrConfiguration and are raised before any network access.
func (r *Request) Validate() error {
	switch r.Product {
	case ProductAnalysis, ProductForecast, ProductReforecast:
	default:
		return errors.Wrapf(errors.ErrConfiguration, "unknown product %q", r.Product)
	}
	switch r.Level {
	case LevelSurface, LevelPressure, LevelEFI:
	default:
		return errors.Wrapf(errors.ErrConfiguration, "unknown level %q", r.Level)
	}
	switch r.Type {
	case TypeHighRes, TypeEnsemble:
	case "":
		if r.Product != ProductAnalysis {
			return errors.Wrapf(errors.ErrConfiguration, "product %q requires a run type", r.Product)
		}
	default:
		return errors.Wrapf(errors.ErrConfiguration, "unknown run type %q", r.Type)
	}

	if len(r.Dates) == 0 {
		return errors.Wrap(errors.ErrConfiguration, "at least one date is required")
	}
	if r.Product == ProductReforecast {
		for _, d := range r.Dates {
			if !reforecastWeekdays[d.Weekday()] {
				return errors.Wrapf(errors.ErrConfiguration,
					"reforecast date %s is not a Monday or Thursday", d.Format("2006-01-02"))
			}
		}
	}

	for _, s := range r.Steps {
		if s < 0 {
			return errors.Wrapf(errors.ErrConfiguration, "negative step %d", s)
		}
	}
	for _, m := range r.Members {
		if m < 0 {
			return errors.Wrapf(errors.ErrConfiguration, "negative member %d", m)
		}
	}

	switch r.Format {
	case FormatGRIB, "":
		if r.Area != nil {
			return errors.Wrap(errors.ErrConfiguration,
				"area selection requires a non-native output format")
		}
	case FormatNetCDF:
		// NetCDF time dimensions cannot represent overlapping
		// initialization+step combinations.
		if len(r.Dates) != 1 {
			return errors.Wrap(errors.ErrConfiguration,
				"netcdf output requires exactly one date")
		}
	default:
		return errors.Wrapf(errors.ErrConfiguration, "unknown output format %q", r.Format)
	}

	return nil
}

// OutputFormat returns the requested container format, defaulting to GRIB.
func (r *Request) OutputFormat() Format {
	if r.Format == "" {
		return FormatGRIB
	}
	return r.Format
}

// WantsControl reports whether the member selection includes the control run.
func (r *Request) WantsControl() bool {
	if len(r.Members) == 0 {
		return true
	}
	for _, m := range r.Members {
		if m == 0 {
			return true
		}
	}
	return false
}

// WantsPerturbed reports whether the member selection includes any
// perturbed member.
func (r *Request) WantsPerturbed() bool {
	if len(r.Members) == 0 {
		return true
	}
	for _, m := range r.Members {
		if m > 0 {
			return true
		}
	}
	return false
}

// String returns a compact description for logging.
func (r *Request) String() string {
	return fmt.Sprintf("%s/%s/%s dates=%d steps=%d params=%d members=%d",
		r.Product, r.Level, r.Type, len(r.Dates), len(r.Steps), len(r.Params), len(r.Members))
}

// Date builds a UTC calendar date as used in Request.Dates.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
