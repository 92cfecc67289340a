// Package scenariocmd holds the `etm scenario` subcommands: create, show
// and update.
package scenariocmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/clifmt"
	"github.com/quintel/etm/scenario"
)

type Dependencies struct {
	Connect func() (*client.Client, config.Settings, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Create, inspect and update scenarios",
	}

	cmd.AddCommand(newCreateCmd(deps))
	cmd.AddCommand(newShowCmd(deps))
	cmd.AddCommand(newUpdateCmd(deps))
	return cmd
}

func newCreateCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new scenario",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}

			attrs := map[string]any{}
			area, _ := cmd.Flags().GetString("area-code")
			endYear, _ := cmd.Flags().GetInt("end-year")
			attrs["area_code"] = area
			attrs["end_year"] = endYear
			if title, _ := cmd.Flags().GetString("title"); title != "" {
				attrs["title"] = title
			}
			if private, _ := cmd.Flags().GetBool("private"); cmd.Flags().Changed("private") {
				attrs["private"] = private
			}
			if keep, _ := cmd.Flags().GetBool("keep-compatible"); cmd.Flags().Changed("keep-compatible") {
				attrs["keep_compatible"] = keep
			}
			if source, _ := cmd.Flags().GetString("source"); source != "" {
				attrs["source"] = source
			}

			s, err := scenario.Create(cmd.Context(), c, settings, attrs)
			if err != nil {
				return err
			}
			printWarnings(cmd, &s.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Created scenario %d (%s, %d)\n", s.ID, s.AreaCode, s.EndYear)
			return nil
		},
	}

	cmd.Flags().String("area-code", "", "Dataset area code, e.g. nl or de.")
	cmd.Flags().Int("end-year", 0, "Scenario end year, e.g. 2050.")
	cmd.Flags().String("title", "", "Scenario title.")
	cmd.Flags().String("source", "", "Source label for the scenario.")
	cmd.Flags().Bool("private", false, "Create the scenario as private.")
	cmd.Flags().Bool("keep-compatible", false, "Keep the scenario compatible across engine updates.")
	_ = cmd.MarkFlagRequired("area-code")
	_ = cmd.MarkFlagRequired("end-year")

	return cmd
}

func newShowCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scenario-id>",
		Short: "Show a scenario's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseID(args[0])
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

			rows := []clifmt.NameDetailRow{
				{Name: "id", Detail: strconv.Itoa(s.ID)},
				{Name: "title", Detail: s.Title},
				{Name: "area_code", Detail: s.AreaCode},
				{Name: "end_year", Detail: strconv.Itoa(s.EndYear)},
				{Name: "version", Detail: s.Version()},
				{Name: "private", Detail: strconv.FormatBool(s.Private)},
				{Name: "keep_compatible", Detail: strconv.FormatBool(s.KeepCompatible)},
				{Name: "url", Detail: s.URL},
			}
			if s.CreatedAt != nil {
				rows = append(rows, clifmt.NameDetailRow{Name: "created_at", Detail: s.CreatedAt.String()})
			}

			keys := make([]string, 0, len(s.Metadata))
			for k := range s.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				rows = append(rows, clifmt.NameDetailRow{Name: k, Detail: fmt.Sprintf("%v", s.Metadata[k])})
			}

			clifmt.PrintNameDetailTable(cmd.OutOrStdout(), clifmt.NameDetailTableOptions{
				Title:        s.Identifier(),
				Rows:         rows,
				NameHeader:   "FIELD",
				DetailHeader: "VALUE",
			})
			return nil
		},
	}
}

func newUpdateCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <scenario-id>",
		Short: "Update scenario metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseID(args[0])
			if err != nil {
				return err
			}
			c, settings, err := deps.Connect()
			if err != nil {
				return err
			}

			attrs := map[string]any{}
			if source, _ := cmd.Flags().GetString("source"); cmd.Flags().Changed("source") {
				attrs["source"] = source
			}
			if private, _ := cmd.Flags().GetBool("private"); cmd.Flags().Changed("private") {
				attrs["private"] = private
			}
			if keep, _ := cmd.Flags().GetBool("keep-compatible"); cmd.Flags().Changed("keep-compatible") {
				attrs["keep_compatible"] = keep
			}
			pairs, _ := cmd.Flags().GetStringArray("set")
			if len(pairs) > 0 {
				meta := map[string]any{}
				for _, pair := range pairs {
					key, value, found := strings.Cut(pair, "=")
					if !found || key == "" {
						return fmt.Errorf("invalid --set %q, expected key=value", pair)
					}
					meta[key] = value
				}
				attrs["metadata"] = meta
			}
			if len(attrs) == 0 {
				return fmt.Errorf("nothing to update, pass --source, --private, --keep-compatible or --set")
			}

			s, err := scenario.Load(cmd.Context(), c, settings, id)
			if err != nil {
				return err
			}
			if err := s.UpdateMetadata(cmd.Context(), attrs); err != nil {
				return err
			}
			printWarnings(cmd, &s.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated scenario %d\n", s.ID)
			return nil
		},
	}

	cmd.Flags().String("source", "", "New source label.")
	cmd.Flags().Bool("private", false, "Mark the scenario private.")
	cmd.Flags().Bool("keep-compatible", false, "Keep the scenario compatible across engine updates.")
	cmd.Flags().StringArray("set", nil, "Metadata entry as key=value (repeatable).")

	return cmd
}

// ParseID parses a scenario id argument.
func ParseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scenario id %q", arg)
	}
	return id, nil
}

func printWarnings(cmd *cobra.Command, ws *scenario.Warnings) {
	for _, w := range ws.Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), clifmt.Warn("warning: "+w.String()))
	}
}
