// Package packcmd holds the `etm pack` subcommands: exporting scenarios to
// Excel workbooks and creating or updating scenarios from one.
package packcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/cmd/etm/scenariocmd"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/clifmt"
	"github.com/quintel/etm/internal/configutil"
	"github.com/quintel/etm/internal/pathutil"
	"github.com/quintel/etm/pack"
	"github.com/quintel/etm/scenario"
)

type Dependencies struct {
	Connect func() (*client.Client, config.Settings, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Move scenarios between the engine and Excel workbooks",
	}

	cmd.AddCommand(newExportCmd(deps))
	cmd.AddCommand(newImportCmd(deps))
	cmd.AddCommand(newOutputCurvesCmd(deps))
	return cmd
}

func newExportCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <scenario-id>...",
		Short: "Export scenarios to an Excel workbook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPacker(cmd, deps, args)
			if err != nil {
				return err
			}

			queries, _ := cmd.Flags().GetStringSlice("query")
			if len(queries) > 0 {
				for _, s := range p.Scenarios() {
					s.AddQueries(queries...)
				}
			}

			opts := pack.AllSheets()
			if noInputs, _ := cmd.Flags().GetBool("no-inputs"); noInputs {
				opts.Inputs = false
			}
			if noSortables, _ := cmd.Flags().GetBool("no-sortables"); noSortables {
				opts.Sortables = false
			}
			if noCurves, _ := cmd.Flags().GetBool("no-custom-curves"); noCurves {
				opts.CustomCurves = false
			}
			opts.Gqueries = len(queries) > 0

			output := configutil.FlagOrViperString(cmd, "output", "pack.output")
			target, err := pathutil.ResolveForWrite(output)
			if err != nil {
				return err
			}
			if err := p.ToExcel(cmd.Context(), target, opts); err != nil {
				return err
			}
			printWarnings(cmd, p)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d scenario(s))\n", target, p.Len())
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "scenarios.xlsx", "Workbook path to write.")
	cmd.Flags().StringSlice("query", nil, "Gqueries to run and include in the workbook.")
	cmd.Flags().StringSlice("short-name", nil, "Column labels, one per scenario id, in order.")
	cmd.Flags().Bool("no-inputs", false, "Skip the PARAMETERS sheet.")
	cmd.Flags().Bool("no-sortables", false, "Skip the SORTABLES sheet.")
	cmd.Flags().Bool("no-custom-curves", false, "Skip the CUSTOM_CURVES sheet.")
	return cmd
}

func newImportCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Create or update scenarios from an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}
			path := pathutil.ResolveForRead(args[0])
			p, err := pack.FromExcel(cmd.Context(), c, settings, path)
			if err != nil {
				return err
			}

			var rows []clifmt.NameDetailRow
			for _, s := range p.Scenarios() {
				rows = append(rows, clifmt.NameDetailRow{
					Name:   fmt.Sprintf("%d", s.ID),
					Detail: s.Identifier(),
				})
			}
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:     "Imported scenarios",
				Rows:      rows,
				EmptyText: "No scenarios in workbook.",
			})
			printWarnings(cmd, p)
			return nil
		},
	}
}

func newOutputCurvesCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "output-curves <scenario-id>...",
		Short: "Export hourly output curves to a workbook per scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPacker(cmd, deps, args)
			if err != nil {
				return err
			}

			carriers := configutil.FlagOrViperStringSlice(cmd, "carrier", "pack.carriers")
			for _, carrier := range carriers {
				if len(scenario.CurvesForCarrier(carrier)) == 0 {
					return fmt.Errorf("unknown carrier %s", carrier)
				}
			}

			output, _ := cmd.Flags().GetString("output")
			target, err := pathutil.ResolveForWrite(output)
			if err != nil {
				return err
			}
			if err := p.WriteOutputCurves(cmd.Context(), target, carriers); err != nil {
				return err
			}
			printWarnings(cmd, p)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote output curves for %d scenario(s)\n", p.Len())
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "output_curves.xlsx", "Workbook path to write.")
	cmd.Flags().StringSlice("carrier", nil, "Carriers to include; defaults to all.")
	return cmd
}

func buildPacker(cmd *cobra.Command, deps Dependencies, args []string) (*pack.Packer, error) {
	c, settings, err := deps.Connect()
	if err != nil {
		return nil, err
	}

	p := pack.New()
	for _, arg := range args {
		id, err := scenariocmd.ParseID(arg)
		if err != nil {
			return nil, err
		}
		s, err := scenario.Load(cmd.Context(), c, settings, id)
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}

	if shortNames, _ := cmd.Flags().GetStringSlice("short-name"); len(shortNames) > 0 {
		if len(shortNames) != p.Len() {
			return nil, fmt.Errorf("got %d short names for %d scenarios", len(shortNames), p.Len())
		}
		for i, s := range p.Scenarios() {
			p.SetShortName(s.ID, shortNames[i])
		}
	}
	return p, nil
}

func printWarnings(cmd *cobra.Command, p *pack.Packer) {
	for _, s := range p.Scenarios() {
		for _, w := range s.Warnings.Warnings() {
			fmt.Fprintln(cmd.ErrOrStderr(), clifmt.Warn(fmt.Sprintf("warning: scenario %d: %s", s.ID, w)))
		}
	}
}
