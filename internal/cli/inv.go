package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclimdata/subgrib/pkg/inventory"
)

// NewInvCmd creates the inv command.
func NewInvCmd() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "inv",
		Short: "List the fields a request would retrieve",
		Long: `Resolve the remote index files and print the matching fields
without downloading any data. Useful for checking a selection
before committing to a large transfer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInv(cmd, &flags)
		},
	}

	addSelectionFlags(cmd, &flags)
	return cmd
}

func runInv(cmd *cobra.Command, flags *fetchFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req, err := buildRequest(flags)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}
	resolver, err := buildResolver(cfg, client)
	if err != nil {
		return err
	}

	records, err := resolver.Fetch(cmd.Context(), req)
	if err != nil {
		return err
	}
	matched := inventory.Filter(records, req)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tLEVEL\tINIT\tSTEP\tVALID\tMEMBER\tBYTES")
	var total int64
	for _, rec := range matched {
		member := "-"
		if rec.Number >= 0 {
			member = fmt.Sprintf("%d", rec.Number)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			rec.Param, rec.Levtype,
			rec.Init.Format("2006-01-02 15:04"), rec.Step,
			rec.Valid.Format("2006-01-02 15:04"),
			member, rec.Length)
		total += rec.Length
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d fields, %d bytes\n", len(matched), total)
	if len(matched) > 0 {
		earliest, latest := inventory.ValidRange(matched)
		fmt.Printf("valid %s to %s\n",
			earliest.Format("2006-01-02 15:04"), latest.Format("2006-01-02 15:04"))
	}
	return nil
}
