// Package querycmd holds `etm query`: run gqueries against a scenario.
package querycmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/cmd/etm/scenariocmd"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/clifmt"
	"github.com/quintel/etm/pack"
	"github.com/quintel/etm/scenario"
)

type Dependencies struct {
	Connect func() (*client.Client, config.Settings, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <scenario-id> <gquery>...",
		Short: "Run gqueries against a scenario",
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
			s.AddQueries(args[1:]...)
			if err := s.ExecuteQueries(cmd.Context()); err != nil {
				return err
			}

			if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
				return writeCSV(cmd, s, settings, csvPath)
			}

			var rows []clifmt.NameDetailRow
			for _, key := range s.Queries().Keys() {
				r, ok := s.Queries().Result(key)
				if !ok {
					rows = append(rows, clifmt.NameDetailRow{Name: key, Detail: "no result"})
					continue
				}
				rows = append(rows, clifmt.NameDetailRow{
					Name:   key,
					Detail: fmt.Sprintf("present: %g, future: %g, unit: %s", r.Present, r.Future, r.Unit),
				})
			}
			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        fmt.Sprintf("Query results for scenario %d", id),
				Rows:         rows,
				NameHeader:   "GQUERY",
				DetailHeader: "RESULT",
			})
			return nil
		},
	}

	cmd.Flags().String("csv", "", "Write results to a CSV file instead of stdout.")
	return cmd
}

func writeCSV(cmd *cobra.Command, s *scenario.Scenario, settings config.Settings, path string) error {
	p := pack.New()
	p.Add(s)
	frame, err := p.GqueryResultsFrame(cmd.Context())
	if err != nil {
		return err
	}
	return pack.WriteFrameCSV(frame, path, settings)
}
