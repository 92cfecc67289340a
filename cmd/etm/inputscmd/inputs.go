// Package inputscmd holds the `etm inputs` subcommands: list, set and
// reset.
package inputscmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/cmd/etm/scenariocmd"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/clifmt"
	"github.com/quintel/etm/scenario"
)

type Dependencies struct {
	Connect func() (*client.Client, config.Settings, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inputs",
		Short: "Inspect and change scenario inputs",
	}

	cmd.AddCommand(newListCmd(deps))
	cmd.AddCommand(newSetCmd(deps))
	cmd.AddCommand(newResetCmd(deps))
	return cmd
}

func newListCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <scenario-id>",
		Short: "List scenario inputs",
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
			var inputs *scenario.Inputs
			if defaults, _ := cmd.Flags().GetString("defaults"); defaults != "" {
				inputs, err = s.InputsWithDefaults(cmd.Context(), defaults)
			} else {
				inputs, err = s.Inputs(cmd.Context())
			}
			if err != nil {
				return err
			}

			setOnly, _ := cmd.Flags().GetBool("set-only")
			filter, _ := cmd.Flags().GetString("filter")

			var rows []clifmt.NameDetailRow
			inputs.Each(func(in *scenario.Input) {
				if setOnly && !in.IsSet() {
					return
				}
				if filter != "" && !strings.Contains(in.Key, filter) {
					return
				}
				rows = append(rows, clifmt.NameDetailRow{Name: in.Key, Detail: describeInput(in)})
			})

			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        fmt.Sprintf("Inputs of scenario %d", id),
				Rows:         rows,
				DetailHeader: "VALUE",
				EmptyText:    "No inputs matched.",
			})
			return nil
		},
	}

	cmd.Flags().Bool("set-only", false, "Only show inputs with a user value.")
	cmd.Flags().String("filter", "", "Only show inputs whose key contains this substring.")
	cmd.Flags().String("defaults", "", "Alternate defaults source, e.g. original.")
	return cmd
}

func describeInput(in *scenario.Input) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("value: %v", in.Value()))
	if in.IsSet() {
		parts = append(parts, fmt.Sprintf("default: %v", in.Default))
	}
	if in.Unit != "" {
		parts = append(parts, "unit: "+in.Unit)
	}
	if in.Kind() == scenario.FloatInput && in.Min != nil && in.Max != nil {
		parts = append(parts, fmt.Sprintf("range: %v..%v", *in.Min, *in.Max))
	}
	if len(in.PermittedValues) > 0 {
		parts = append(parts, "permitted: "+strings.Join(in.PermittedValues, "|"))
	}
	if in.ShareGroup != "" {
		parts = append(parts, "group: "+in.ShareGroup)
	}
	if in.Disabled {
		parts = append(parts, "disabled by "+in.DisabledBy)
	}
	return strings.Join(parts, ", ")
}

func newSetCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "set <scenario-id> <key=value>...",
		Short: "Set user values on a scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			values, err := parsePairs(args[1:])
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
			if err := s.UpdateUserValues(cmd.Context(), values); err != nil {
				return err
			}
			for _, w := range s.Warnings.Warnings() {
				fmt.Fprintln(cmd.ErrOrStderr(), clifmt.Warn("warning: "+w.String()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d input(s) on scenario %d\n", len(values), id)
			return nil
		},
	}
}

func newResetCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <scenario-id> <key>...",
		Short: "Reset inputs back to their defaults",
		Args:  cobra.MinimumNArgs(2),
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
			if err := s.RemoveUserValues(cmd.Context(), args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d input(s) on scenario %d\n", len(args)-1, id)
			return nil
		},
	}
}

// parsePairs turns key=value arguments into an update map. Values parse as
// floats when possible and stay strings otherwise, so enums and the reset
// sentinel pass through.
func parsePairs(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, found := strings.Cut(arg, "=")
		if !found || key == "" || raw == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", arg)
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			values[key] = f
		} else {
			values[key] = raw
		}
	}
	return values, nil
}
