// Package sortablescmd holds the `etm sortables` subcommands.
package sortablescmd

import (
	"fmt"
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
		Use:   "sortables",
		Short: "Inspect and change user-sortable orders",
	}

	cmd.AddCommand(newListCmd(deps))
	cmd.AddCommand(newSetCmd(deps))
	cmd.AddCommand(newResetCmd(deps))
	return cmd
}

func newListCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scenario-id>",
		Short: "List the scenario's orders",
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
			sortables, err := s.Sortables(cmd.Context())
			if err != nil {
				return err
			}

			var rows []clifmt.NameDetailRow
			sortables.Each(func(sb *scenario.Sortable) {
				detail := strings.Join(sb.Order, " > ")
				rows = append(rows, clifmt.NameDetailRow{Name: sb.Name(), Detail: detail})
			})
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        fmt.Sprintf("Sortables of scenario %d", id),
				Rows:         rows,
				DetailHeader: "ORDER",
				EmptyDetail:  "empty",
			})
			return nil
		},
	}
}

func newSetCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "set <scenario-id> <name> <item,item,...>",
		Short: "Replace one order",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scenariocmd.ParseID(args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			order := splitOrder(args[2])
			if len(order) == 0 {
				return fmt.Errorf("empty order, pass a comma separated list")
			}
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}

			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}
			if err := s.UpdateSortables(cmd.Context(), map[string][]string{name: order}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s on scenario %d\n", name, id)
			return nil
		},
	}
}

func newResetCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <scenario-id> <name>...",
		Short: "Clear orders back to their defaults",
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
			if err := s.RemoveSortables(cmd.Context(), args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d order(s) on scenario %d\n", len(args)-1, id)
			return nil
		},
	}
}

func splitOrder(arg string) []string {
	var out []string
	for _, item := range strings.Split(arg, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
