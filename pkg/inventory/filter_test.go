package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimdata/subgrib/pkg/model"
)

func forecastRecord(init time.Time, step, number int, param string) model.Record {
	rec := model.Record{
		Path:   "forecast/sfc/20170102/ens_pf.grib",
		Param:  param,
		Init:   init,
		Step:   step,
		Number: number,
		Type:   "pf",
		Length: 100,
	}
	if number == 0 {
		rec.Type = "cf"
	}
	rec.ComputeValid()
	return rec
}

func TestFilter_ForecastInitSemantics(t *testing.T) {
	wanted := model.Date(2017, time.January, 2)
	other := model.Date(2017, time.January, 3)

	records := []model.Record{
		forecastRecord(wanted, 24, 0, "cp"),
		forecastRecord(other, 24, 0, "cp"),
		// Valid time lands on the wanted date, but the run was issued a
		// day early: init-time filtering must drop it.
		forecastRecord(wanted.Add(-24*time.Hour), 24, 0, "cp"),
	}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{wanted},
	}

	got := Filter(records, req)
	require.Len(t, got, 1)
	assert.Equal(t, wanted, got[0].Init)
}

func TestFilter_AnalysisValidSemantics(t *testing.T) {
	wanted := model.Date(2020, time.June, 1)

	records := []model.Record{
		// init outside the wanted date but valid inside: must be kept.
		forecastRecord(wanted.Add(-6*time.Hour), 6, 0, "2t"),
		// init inside but valid on the next day: must be dropped.
		forecastRecord(wanted.Add(23*time.Hour), 6, 0, "2t"),
		// plain analysis row at 12 UTC on the wanted date.
		forecastRecord(wanted.Add(12*time.Hour), 0, 0, "2t"),
	}

	req := &model.Request{
		Product: model.ProductAnalysis,
		Level:   model.LevelSurface,
		Dates:   []time.Time{wanted},
	}

	got := Filter(records, req)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, "20200601", rec.Valid.UTC().Format("20060102"))
	}
}

func TestFilter_AnalysisStepsAreHoursOfDay(t *testing.T) {
	day := model.Date(2020, time.June, 1)
	records := []model.Record{
		forecastRecord(day, 0, 0, "2t"),                     // valid 00
		forecastRecord(day.Add(6*time.Hour), 0, 0, "2t"),    // valid 06
		forecastRecord(day.Add(12*time.Hour), 0, 0, "2t"),   // valid 12
		forecastRecord(day.Add(6*time.Hour), 12, 0, "2t"),   // valid 18
	}

	req := &model.Request{
		Product: model.ProductAnalysis,
		Level:   model.LevelSurface,
		Dates:   []time.Time{day},
		Steps:   []int{6, 18},
	}

	got := Filter(records, req)
	require.Len(t, got, 2)
	assert.Equal(t, 6, got[0].Valid.UTC().Hour())
	assert.Equal(t, 18, got[1].Valid.UTC().Hour())
}

func TestFilter_EnsembleScenario(t *testing.T) {
	// 5-hourly steps x 10 members x 2 params; narrowing to one param,
	// 4 members and a step window keeps only the matching grid cells.
	init := model.Date(2017, time.January, 2)
	var records []model.Record
	for step := 0; step <= 240; step += 5 {
		for member := 0; member <= 9; member++ {
			records = append(records, forecastRecord(init, step, member, "cp"))
			records = append(records, forecastRecord(init, step, member, "tp"))
		}
	}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{init},
		Steps:   Steps(72, 120),
		Members: []int{0, 1, 2, 3},
		Params:  []string{"cp"},
	}

	got := Filter(records, req)
	// Steps 72..120 on a 5-hourly grid: 75,80,...,120 = 10 present steps.
	assert.Len(t, got, 10*4)
	for _, rec := range got {
		assert.Equal(t, "cp", rec.Param)
		assert.LessOrEqual(t, rec.Step, 120)
		assert.GreaterOrEqual(t, rec.Step, 72)
		assert.LessOrEqual(t, rec.Number, 3)
	}
}

func TestFilter_FullStepGridScenario(t *testing.T) {
	// One record per step/member on an hourly grid; a 72..120 window
	// over 4 members keeps 49 x 4 = 196 rows.
	init := model.Date(2017, time.January, 2)
	var records []model.Record
	for step := 0; step <= 140; step++ {
		for member := 0; member <= 5; member++ {
			records = append(records, forecastRecord(init, step, member, "cp"))
		}
	}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{init},
		Steps:   Steps(72, 120),
		Members: []int{0, 1, 2, 3},
		Params:  []string{"cp"},
	}

	assert.Len(t, Filter(records, req), 196)
}

func TestFilter_MemberFilterDropsUnnumbered(t *testing.T) {
	init := model.Date(2017, time.January, 2)
	rec := forecastRecord(init, 0, model.NoMember, "2t")
	rec.Type = ""

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{init},
		Members: []int{0},
	}

	assert.Empty(t, Filter([]model.Record{rec}, req))
}

func TestFilter_UnsetFieldsAreNoOps(t *testing.T) {
	init := model.Date(2017, time.January, 2)
	records := []model.Record{
		forecastRecord(init, 12, 1, "cp"),
		forecastRecord(init, 24, 2, "tp"),
	}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{init},
	}

	assert.Equal(t, records, Filter(records, req))
}

func TestFilter_PreservesOrder(t *testing.T) {
	init := model.Date(2017, time.January, 2)
	records := []model.Record{
		forecastRecord(init, 48, 2, "cp"),
		forecastRecord(init, 0, 1, "cp"),
		forecastRecord(init, 24, 3, "cp"),
	}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{init},
	}

	got := Filter(records, req)
	require.Len(t, got, 3)
	assert.Equal(t, []int{48, 0, 24}, []int{got[0].Step, got[1].Step, got[2].Step})
}

func TestFilter_NoMatchesYieldsEmptyNotError(t *testing.T) {
	init := model.Date(2017, time.January, 2)
	records := []model.Record{forecastRecord(init, 24, 1, "cp")}

	req := &model.Request{
		Product: model.ProductForecast,
		Level:   model.LevelSurface,
		Type:    model.TypeEnsemble,
		Dates:   []time.Time{model.Date(2019, time.May, 6)},
	}

	got := Filter(records, req)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSteps(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, Steps(3, 5))
	assert.Equal(t, []int{7}, Steps(7, 7))
	assert.Len(t, Steps(72, 120), 49)
	assert.Equal(t, []int{1, 2}, Steps(2, 1), "reversed bounds are normalized")
}

func TestValidRange(t *testing.T) {
	init := model.Date(2017, time.January, 2)
	records := []model.Record{
		forecastRecord(init, 48, 0, "cp"),
		forecastRecord(init, 0, 0, "cp"),
		forecastRecord(init, 120, 0, "cp"),
	}

	earliest, latest := ValidRange(records)
	assert.Equal(t, init, earliest)
	assert.Equal(t, init.Add(120*time.Hour), latest)

	earliest, latest = ValidRange(nil)
	assert.True(t, earliest.IsZero())
	assert.True(t, latest.IsZero())
}
