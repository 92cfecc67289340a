// Package curvescmd holds the `etm curves` subcommands for custom and
// output curves.
package curvescmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/cmd/etm/scenariocmd"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/clifmt"
	"github.com/quintel/etm/internal/pathutil"
	"github.com/quintel/etm/pack"
	"github.com/quintel/etm/scenario"
)

type Dependencies struct {
	Connect func() (*client.Client, config.Settings, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Inspect, download and upload curves",
	}

	cmd.AddCommand(newListCmd(deps))
	cmd.AddCommand(newDownloadCmd(deps))
	cmd.AddCommand(newUploadCmd(deps))
	cmd.AddCommand(newDeleteCmd(deps))
	return cmd
}

func newListCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <scenario-id>",
		Short: "List custom curves and their attachment state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}

			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}
			curves, err := s.CustomCurves(cmd.Context())
			if err != nil {
				return err
			}

			attachedOnly, _ := cmd.Flags().GetBool("attached")
			var rows []clifmt.NameDetailRow
			curves.Each(func(cc *scenario.CustomCurve) {
				if attachedOnly && !cc.Attached {
					return
				}
				detail := "type: " + cc.Type
				if cc.Attached {
					detail += ", attached"
				}
				if len(cc.Overrides) > 0 {
					detail += ", overrides: " + strings.Join(cc.Overrides, " ")
				}
				rows = append(rows, clifmt.NameDetailRow{Name: cc.Key, Detail: detail})
			})
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:     fmt.Sprintf("Custom curves of scenario %d", id),
				Rows:      rows,
				EmptyText: "No custom curves.",
			})
			return nil
		},
	}

	cmd.Flags().Bool("attached", false, "Only show curves with an uploaded profile.")
	return cmd
}

func newDownloadCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <scenario-id> [curve-key]...",
		Short: "Download custom or output curves to CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}
			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}

			carrier, _ := cmd.Flags().GetString("carrier")
			output, _ := cmd.Flags().GetString("output")

			if carrier != "" {
				if output == "" {
					output = fmt.Sprintf("scenario_%d_%s.xlsx", id, carrier)
				}
				return downloadCarrier(cmd, s, carrier, output)
			}

			keys := args[1:]
			if len(keys) == 0 {
				curves, err := s.CustomCurves(cmd.Context())
				if err != nil {
					return err
				}
				keys = curves.Attached()
			}
			if len(keys) == 0 {
				return fmt.Errorf("no attached curves to download")
			}

			for _, key := range keys {
				series, err := s.CustomCurveSeries(cmd.Context(), key)
				if err != nil {
					return err
				}
				target, err := pathutil.ResolveForWrite(pathutil.SafeName(key) + ".csv")
				if err != nil {
					return err
				}
				if err := os.WriteFile(target, series.CSV(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			}
			printWarnings(cmd, s)
			return nil
		},
	}

	cmd.Flags().String("carrier", "", "Download output curves for a carrier (electricity|heat|hydrogen|methane) to a workbook.")
	cmd.Flags().String("output", "", "Output file path.")
	return cmd
}

func downloadCarrier(cmd *cobra.Command, s *scenario.Scenario, carrier, output string) error {
	frame, err := pack.CarrierFrame(cmd.Context(), s, carrier)
	if err != nil {
		return err
	}
	if frame.Empty() {
		return fmt.Errorf("no output curves for carrier %s", carrier)
	}
	target, err := pathutil.ResolveForWrite(output)
	if err != nil {
		return err
	}
	if err := pack.WriteWorkbook(target, []*pack.Frame{frame}); err != nil {
		return err
	}
	printWarnings(cmd, s)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
	return nil
}

func newUploadCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <scenario-id> <curve-key> <csv-file>",
		Short: "Attach a custom curve profile from a CSV file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			key := args[1]
			path := pathutil.ResolveForRead(args[2])

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			series, err := scenario.ParseSeriesCSV(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}
			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}
			if err := s.UploadCustomCurve(cmd.Context(), key, series); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to scenario %d (%d values)\n", key, id, len(series))
			return nil
		},
	}
}

func newDeleteCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scenario-id> <curve-key>",
		Short: "Detach a custom curve",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}
			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}
			if err := s.DeleteCustomCurve(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Detached %s from scenario %d\n", args[1], id)
			return nil
		},
	}
}

func printWarnings(cmd *cobra.Command, s *scenario.Scenario) {
	for _, w := range s.Warnings.Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), clifmt.Warn("warning: "+w.String()))
	}
}
