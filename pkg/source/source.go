// Package source maps a selection request to the remote index and data
// resources that must be consulted. Resolution is pure: no I/O, no
// duplicates, deterministic order.
package source

import (
	"fmt"
	"time"

	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/model"
)

// IndexSuffix is appended to a data identifier to address its index file.
const IndexSuffix = ".index"

// Member buckets within an ensemble dataset. The control run and the
// perturbed members live in separate archive files.
const (
	bucketControl   = "cf"
	bucketPerturbed = "pf"
)

// Resource pairs a data-file identifier with its index-file identifier.
// Identifiers are relative to the archive base URL.
type Resource struct {
	Data  string
	Index string
}

type datasetKey struct {
	product model.Product
	level   model.Level
	runType model.RunType
}

type template struct {
	// pattern has one %s verb for the date and, when bucketed is set,
	// a second one for the member bucket.
	pattern  string
	bucketed bool
}

// The static dataset table. Combinations absent here do not exist in the
// archive and are rejected at resolution time.
var datasets = map[datasetKey]template{
	{model.ProductAnalysis, model.LevelSurface, ""}:  {pattern: "analysis/sfc/%s/an.grib"},
	{model.ProductAnalysis, model.LevelPressure, ""}: {pattern: "analysis/pl/%s/an.grib"},

	{model.ProductForecast, model.LevelSurface, model.TypeHighRes}:   {pattern: "forecast/sfc/%s/hres.grib"},
	{model.ProductForecast, model.LevelSurface, model.TypeEnsemble}:  {pattern: "forecast/sfc/%s/ens_%s.grib", bucketed: true},
	{model.ProductForecast, model.LevelPressure, model.TypeHighRes}:  {pattern: "forecast/pl/%s/hres.grib"},
	{model.ProductForecast, model.LevelPressure, model.TypeEnsemble}: {pattern: "forecast/pl/%s/ens_%s.grib", bucketed: true},
	{model.ProductForecast, model.LevelEFI, model.TypeEnsemble}:      {pattern: "forecast/efi/%s/efi.grib"},

	{model.ProductReforecast, model.LevelSurface, model.TypeEnsemble}:  {pattern: "reforecast/sfc/%s/ens_%s.grib", bucketed: true},
	{model.ProductReforecast, model.LevelPressure, model.TypeEnsemble}: {pattern: "reforecast/pl/%s/ens_%s.grib", bucketed: true},
}

// Resolve returns the resources implied by the request, one per
// (date, member bucket), in date order with the control bucket first.
// It fails with a configuration error when the (product, level, type)
// combination has no dataset.
func Resolve(req *model.Request) ([]Resource, error) {
	key := datasetKey{product: req.Product, level: req.Level, runType: req.Type}
	if req.Product == model.ProductAnalysis {
		// Run type carries no meaning for analysis products.
		key.runType = ""
	}

	tpl, ok := datasets[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownDataset, "%s/%s/%s",
			req.Product, req.Level, req.Type)
	}

	seen := make(map[string]bool)
	var resources []Resource
	add := func(data string) {
		if seen[data] {
			return
		}
		seen[data] = true
		resources = append(resources, Resource{Data: data, Index: data + IndexSuffix})
	}

	for _, date := range req.Dates {
		ds := dateStamp(date)
		if !tpl.bucketed {
			add(fmt.Sprintf(tpl.pattern, ds))
			continue
		}
		if req.WantsControl() {
			add(fmt.Sprintf(tpl.pattern, ds, bucketControl))
		}
		if req.WantsPerturbed() {
			add(fmt.Sprintf(tpl.pattern, ds, bucketPerturbed))
		}
	}

	return resources, nil
}

// Identifiers returns only the index-file or data-file identifiers,
// preserving Resolve's order.
func Identifiers(req *model.Request, wantIndex bool) ([]string, error) {
	resources, err := Resolve(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resources))
	for _, res := range resources {
		if wantIndex {
			ids = append(ids, res.Index)
		} else {
			ids = append(ids, res.Data)
		}
	}
	return ids, nil
}

func dateStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}
