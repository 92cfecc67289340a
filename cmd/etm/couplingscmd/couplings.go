// Package couplingscmd holds the `etm couplings` subcommands.
package couplingscmd

import (
	"fmt"

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
		Use:   "couplings",
		Short: "Inspect and toggle scenario coupling groups",
	}

	cmd.AddCommand(newListCmd(deps))
	cmd.AddCommand(newCoupleCmd(deps))
	cmd.AddCommand(newUncoupleCmd(deps))
	return cmd
}

func newListCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scenario-id>",
		Short: "Show active and inactive coupling groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(cmd, deps, args[0])
			if err != nil {
				return err
			}
			couplings, err := s.Couplings(cmd.Context())
			if err != nil {
				return err
			}

			var rows []clifmt.NameDetailRow
			for _, g := range couplings.Active {
				rows = append(rows, clifmt.NameDetailRow{Name: g, Detail: "active"})
			}
			for _, g := range couplings.Inactive {
				rows = append(rows, clifmt.NameDetailRow{Name: g, Detail: "inactive"})
			}
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:     fmt.Sprintf("Coupling groups of scenario %d", s.ID),
				Rows:      rows,
				EmptyText: "No coupling groups.",
			})
			return nil
		},
	}
}

func newCoupleCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "couple <scenario-id> <group>...",
		Short: "Activate coupling groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(cmd, deps, args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := s.Couple(cmd.Context(), args[1:], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Coupled %d group(s) on scenario %d\n", len(args)-1, s.ID)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Also activate groups unknown to the scenario.")
	return cmd
}

func newUncoupleCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uncouple <scenario-id> <group>...",
		Short: "Deactivate coupling groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(cmd, deps, args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := s.Uncouple(cmd.Context(), args[1:], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uncoupled %d group(s) on scenario %d\n", len(args)-1, s.ID)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Also deactivate groups unknown to the scenario.")
	return cmd
}

func loadScenario(cmd *cobra.Command, deps Dependencies, arg string) (*scenario.Scenario, error) {
	id, err := scenariocmd.ParseID(arg)
	if err != nil {
		return nil, err
	}
	c, settings, err := deps.Connect()
	if err != nil {
		return nil, err
	}
	return scenario.Load(cmd.Context(), c, settings, id)
}
