// Package convert is the boundary to the external format converter. It
// shells out to the ecCodes tools and never interprets GRIB bytes itself.
package convert

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/errors"
)

// Default converter command names, looked up in the system path on each
// invocation.
const (
	DefaultGribSet      = "grib_set"
	DefaultGribToNetCDF = "grib_to_netcdf"
)

// DefaultKind is the NetCDF file kind passed to the converter.
const DefaultKind = 3

// Converter invokes the external conversion tools.
type Converter struct {
	// GribSet and GribToNetCDF override the command names; empty uses
	// the defaults.
	GribSet      string
	GribToNetCDF string
}

func (c *Converter) gribSet() string {
	if c.GribSet != "" {
		return c.GribSet
	}
	return DefaultGribSet
}

func (c *Converter) gribToNetCDF() string {
	if c.GribToNetCDF != "" {
		return c.GribToNetCDF
	}
	return DefaultGribToNetCDF
}

// Available checks that the required executables are present on the host.
func (c *Converter) Available() error {
	for _, name := range []string{c.gribSet(), c.gribToNetCDF()} {
		if _, err := exec.LookPath(name); err != nil {
			return errors.Wrapf(errors.ErrConverterMissing, "%s", name)
		}
	}
	return nil
}

// ToNetCDF converts the assembled GRIB artifact at src into a NetCDF file
// at dest, passing kind through to the converter.
//
// For ensemble data the control-run messages are first rewritten to carry
// member 0 under the perturbed type, so the converter keeps all members in
// one homogeneous field instead of dropping the control run as a separate
// type. This reproduces the converter's quirk, nothing more.
func (c *Converter) ToNetCDF(ctx context.Context, src, dest string, kind int, ensemble bool) error {
	if err := c.Available(); err != nil {
		return err
	}
	if kind == 0 {
		kind = DefaultKind
	}

	input := src
	if ensemble {
		rewritten := src + ".pf"
		defer func() { _ = os.Remove(rewritten) }()

		if err := c.run(ctx, c.gribSet(),
			"-s", "type=pf,perturbationNumber=0",
			"-w", "type=cf",
			src, rewritten); err != nil {
			return err
		}
		input = rewritten
	}

	return c.run(ctx, c.gribToNetCDF(), "-k", strconv.Itoa(kind), "-o", dest, input)
}

func (c *Converter) run(ctx context.Context, name string, args ...string) error {
	logger.Debug("running converter", logger.Fields{"cmd": name})

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		return errors.Wrapf(errors.ErrConversion, "%s: %s", name, msg)
	}
	return nil
}
