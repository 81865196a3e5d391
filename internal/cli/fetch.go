package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclimdata/subgrib/pkg/fetch"
	"github.com/openclimdata/subgrib/pkg/model"
)

type fetchFlags struct {
	product   string
	level     string
	runType   string
	dates     string
	steps     string
	params    []string
	members   string
	area      string
	format    string
	kind      int
	output    string
	overwrite bool
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Retrieve a subset of the archive into one file",
		Long: `Retrieve the requested fields from the remote archive and assemble
them into a single output file. Only the matching byte ranges are
downloaded; the full archive files are never transferred.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, &flags)
		},
	}

	addSelectionFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.area, "area", "", "bounding box N,W,S,E in degrees (non-native formats only)")
	cmd.Flags().StringVar(&flags.format, "format", "grib", "output format (grib, nc)")
	cmd.Flags().IntVar(&flags.kind, "kind", 0, "NetCDF file kind passed to the converter")
	cmd.Flags().StringVarP(&flags.output, "output", "O", "", "output file path (required)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace the output file if it exists")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// addSelectionFlags registers the field-selection flags shared by fetch and inv.
func addSelectionFlags(cmd *cobra.Command, flags *fetchFlags) {
	cmd.Flags().StringVar(&flags.product, "product", "", "product family (analysis, forecast, reforecast)")
	cmd.Flags().StringVar(&flags.level, "level", "sfc", "dataset subtype (sfc, pl, efi)")
	cmd.Flags().StringVar(&flags.runType, "type", "", "run type (hres, ens); not used for analysis")
	cmd.Flags().StringVar(&flags.dates, "date", "", "comma-separated dates, YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.steps, "steps", "", "lead hours, single values or from-to ranges")
	cmd.Flags().StringSliceVar(&flags.params, "param", nil, "parameter short names; empty selects all")
	cmd.Flags().StringVar(&flags.members, "members", "", "ensemble member numbers; 0 is the control run")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("date")
}

// buildRequest translates the flag values into a retrieval request.
func buildRequest(flags *fetchFlags) (*model.Request, error) {
	dates, err := parseDates(flags.dates)
	if err != nil {
		return nil, err
	}
	steps, err := parseSteps(flags.steps)
	if err != nil {
		return nil, err
	}
	members, err := parseMembers(flags.members)
	if err != nil {
		return nil, err
	}
	area, err := parseArea(flags.area)
	if err != nil {
		return nil, err
	}

	return &model.Request{
		Product: model.Product(flags.product),
		Level:   model.Level(flags.level),
		Type:    model.RunType(flags.runType),
		Dates:   dates,
		Steps:   steps,
		Params:  flags.params,
		Members: members,
		Area:    area,
		Format:  model.Format(flags.format),
		Kind:    flags.kind,
	}, nil
}

func runFetch(cmd *cobra.Command, flags *fetchFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req, err := buildRequest(flags)
	if err != nil {
		return err
	}

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}

	result, err := fetcher.Run(cmd.Context(), req, fetch.Options{
		Output:    flags.output,
		Overwrite: flags.overwrite,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d fields)\n", result.Path, len(result.Records))
	return nil
}
