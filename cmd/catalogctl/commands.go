package main

import (
	"errors"
	"fmt"

	"github.com/WessleyAI/wessley-catalog/engine/catalog"
	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/spf13/cobra"
)

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List manufacturers and categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ctl.LoadFilters(cmd.Context()); err != nil {
				return err
			}
			s := a.ctl.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, optionTable("Manufacturer", s.Manufacturers.Options))
			fmt.Fprintln(out, optionTable("Category", s.Categories.Options))
			return nil
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	var search, manufacturer, category string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := optionalID("manufacturer", manufacturer)
			if err != nil {
				return err
			}
			c, err := optionalID("category", category)
			if err != nil {
				return err
			}
			// names in the table come from the filters
			if err := a.ctl.LoadFilters(cmd.Context()); err != nil {
				return err
			}
			a.ctl.SetFilters(search, m, c)
			if err := a.ctl.LoadModels(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), modelsTable(a.ctl.Snapshot().Rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search text")
	cmd.Flags().StringVarP(&manufacturer, "manufacturer", "m", "", "manufacturer id")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	return cmd
}

func newDetailsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "details <id>",
		Short: "Show one model and remember its manufacturer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID("id", args[0])
			if err != nil {
				return err
			}
			if err := a.ctl.ShowDetails(cmd.Context(), id); err != nil {
				return err
			}
			s := a.ctl.Snapshot()
			out := cmd.OutOrStdout()
			if s.Details != nil {
				fmt.Fprintln(out, detailsTable(*s.Details))
			}
			if len(s.Recommendations) > 0 {
				fmt.Fprintln(out, listTable(recommendationsHeading, s.Recommendations))
			}
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <id>...",
		Short: "Compare models side by side",
		Args:  cobra.MinimumNArgs(catalog.MinCompare),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := domain.ParseIDs("id", args)
			if err != nil {
				return err
			}
			// only listed models can be selected
			if err := a.ctl.LoadModels(cmd.Context()); err != nil {
				return err
			}
			for _, id := range ids {
				a.ctl.Toggle(id, true)
			}
			if n := len(a.ctl.Snapshot().Checked); n < catalog.MinCompare {
				return fmt.Errorf("compare: %d of the given models are listed, need at least %d", n, catalog.MinCompare)
			}
			if err := a.ctl.CompareSelected(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), compareTable(a.ctl.Snapshot().Comparison))
			return nil
		},
	}
}

var errNoPreference = errors.New("no preferred manufacturer yet; view a model with `catalogctl details <id>` first " +
	"(the default memory backend forgets it between runs, use --prefs nats or --prefs neo4j)")

func newRecommendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show recommendations for the preferred manufacturer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ctl.LoadRecommendations(cmd.Context()); err != nil {
				return err
			}
			recs := a.ctl.Snapshot().Recommendations
			if recs == nil {
				return errNoPreference
			}
			fmt.Fprintln(cmd.OutOrStdout(), listTable(recommendationsHeading, recs))
			return nil
		},
	}
}

func optionalID(field, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseID(field, raw)
}
