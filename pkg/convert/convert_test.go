package convert

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimdata/subgrib/pkg/errors"
)

// fakeTool writes an executable shell script into dir and returns its path.
func fakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not available on windows")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestAvailable_MissingExecutable(t *testing.T) {
	c := &Converter{GribSet: "definitely-not-installed-grib_set"}
	err := c.Available()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConverterMissing)
	assert.ErrorIs(t, err, errors.ErrConversion)
}

func TestToNetCDF_MissingExecutable(t *testing.T) {
	c := &Converter{GribToNetCDF: "definitely-not-installed-grib_to_netcdf"}
	err := c.ToNetCDF(context.Background(), "in.grib", "out.nc", 3, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConverterMissing)
}

func TestToNetCDF_NonEnsemble(t *testing.T) {
	dir := t.TempDir()
	gribSet := fakeTool(t, dir, "grib_set", `echo "grib_set must not run" >&2; exit 1`)
	toNetCDF := fakeTool(t, dir, "grib_to_netcdf", `
# args: -k <kind> -o <dest> <input>
cp "$5" "$4"`)

	src := filepath.Join(dir, "in.grib")
	dest := filepath.Join(dir, "out.nc")
	require.NoError(t, os.WriteFile(src, []byte("GRIB-bytes"), 0o644))

	c := &Converter{GribSet: gribSet, GribToNetCDF: toNetCDF}
	require.NoError(t, c.ToNetCDF(context.Background(), src, dest, 3, false))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("GRIB-bytes"), data)
}

func TestToNetCDF_EnsembleRewritesControl(t *testing.T) {
	dir := t.TempDir()
	gribSet := fakeTool(t, dir, "grib_set", `
# args: -s type=pf,perturbationNumber=0 -w type=cf <src> <dest>
test "$2" = "type=pf,perturbationNumber=0" || exit 2
test "$4" = "type=cf" || exit 3
cp "$5" "$6"
printf rewritten >> "$6"`)
	toNetCDF := fakeTool(t, dir, "grib_to_netcdf", `cp "$5" "$4"`)

	src := filepath.Join(dir, "in.grib")
	dest := filepath.Join(dir, "out.nc")
	require.NoError(t, os.WriteFile(src, []byte("GRIB"), 0o644))

	c := &Converter{GribSet: gribSet, GribToNetCDF: toNetCDF}
	require.NoError(t, c.ToNetCDF(context.Background(), src, dest, 3, true))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("GRIBrewritten"), data, "converter input is the rewritten file")

	// The intermediate rewritten file is cleaned up.
	_, err = os.Stat(src + ".pf")
	assert.True(t, os.IsNotExist(err))
}

func TestToNetCDF_ConverterFailure(t *testing.T) {
	dir := t.TempDir()
	gribSet := fakeTool(t, dir, "grib_set", `exit 0`)
	toNetCDF := fakeTool(t, dir, "grib_to_netcdf", `echo "unsupported grid" >&2; exit 1`)

	src := filepath.Join(dir, "in.grib")
	require.NoError(t, os.WriteFile(src, []byte("GRIB"), 0o644))

	c := &Converter{GribSet: gribSet, GribToNetCDF: toNetCDF}
	err := c.ToNetCDF(context.Background(), src, filepath.Join(dir, "out.nc"), 3, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConversion)
	assert.Contains(t, err.Error(), "unsupported grid")
}
