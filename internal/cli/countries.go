package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/countries/internal/core"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			countries, err := rootOpts.Service.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			if countries == nil {
				countries = []core.Country{}
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), countries)
			}
			return writeTable(cmd.OutOrStdout(), countries)
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show one country by alpha-2, alpha-3 or numeric code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, err := rootOpts.Service.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), country)
			}
			return writeTable(cmd.OutOrStdout(), []core.Country{*country})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete one country by alpha-2, alpha-3 or numeric code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.Service.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, countries []core.Country) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALPHA2\tALPHA3\tNUMERIC\tSHORT NAME\tFULL NAME\tPOPULATION\tSQUARE")
	for _, c := range countries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%g\n",
			c.IsoAlpha2, c.IsoAlpha3, c.IsoNumeric, c.ShortName, c.FullName, c.Population, c.Square)
	}
	return tw.Flush()
}
