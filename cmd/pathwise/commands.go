package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/pathwise/internal/config"
	"github.com/kalambet/pathwise/internal/dashboard"
	"github.com/kalambet/pathwise/internal/forecast"
	"github.com/kalambet/pathwise/internal/storage"
)

// --- forecast ---

func newForecastCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "forecast [category]",
		Short:     "Show job-market forecasts",
		Long:      "Show job-market forecasts for a category: " + categoryList() + ".",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: categoryIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := forecast.DefaultCategory
			if len(args) == 1 {
				category = strings.ToLower(args[0])
			}
			if !forecast.Valid(category) {
				return fmt.Errorf("unknown category %q (choose from %s)", category, categoryList())
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			fc, err := a.forecasts.Forecasts(cmd.Context(), category)
			if err != nil {
				printError("No result: %v", err)
				return nil
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndentedJSON(out, fc)
			}
			if len(fc) == 0 {
				fmt.Fprintln(out, "No forecasts available.")
				return nil
			}
			for _, f := range fc {
				fmt.Fprintf(out, "%s  %s\n", bold(f.JobTitle), faint(f.Trend))
				fmt.Fprintf(out, "  Demand: %s  Growth: %+.1f%%  Salary: %s\n", f.DemandLevel, f.GrowthRate, f.AvgSalary)
				if len(f.KeySkills) > 0 {
					fmt.Fprintf(out, "  Key skills: %s\n", strings.Join(f.KeySkills, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func categoryIDs() []string {
	ids := make([]string, 0, len(forecast.Categories))
	for _, c := range forecast.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func categoryList() string {
	return strings.Join(categoryIDs(), ", ")
}

// --- dashboard ---

func newDashboardCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your career progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			v := dashboard.Load(a.stats)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndentedJSON(out, v)
			}
			renderDashboard(out, v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func renderDashboard(w io.Writer, v dashboard.View) {
	printHeading(w, "Dashboard")
	fmt.Fprintf(w, "  Assessments taken: %d\n", v.Stats.AssessmentsTaken)
	fmt.Fprintf(w, "  Skills analyzed:   %d\n", v.Stats.SkillsAnalyzed)
	fmt.Fprintf(w, "  Career matches:    %d\n", v.Stats.CareerMatches)
	fmt.Fprintf(w, "  Chat sessions:     %d\n", v.Stats.ChatSessions)

	if !v.HasData {
		fmt.Fprintln(w, "\nNo assessment yet. Run `pathwise assess` to get started.")
		return
	}

	fmt.Fprintf(w, "\n  Career score: %s\n", bold(fmt.Sprintf("%d%%", v.CareerScore)))

	printHeading(w, "Skill progress")
	for _, s := range v.Skills {
		if !s.HasTarget {
			fmt.Fprintf(w, "  %-22s %s\n", s.Skill, faint("no target level"))
			continue
		}
		fmt.Fprintf(w, "  %-22s %s %d%%\n", s.Skill, progressBar(s.Progress, 20), s.Progress)
	}

	if len(v.Recommendations) > 0 {
		printHeading(w, "Next steps")
		for _, r := range v.Recommendations {
			fmt.Fprintf(w, "  %s [%s, %s]\n", bold(r.Title), r.Priority, r.EstimatedTime)
			fmt.Fprintf(w, "    %s\n", r.Description)
		}
	}

	if len(v.RecentActivity) > 0 {
		printHeading(w, "Recent activity")
		for _, act := range v.RecentActivity {
			fmt.Fprintf(w, "  %s  %s\n", act.Date.Local().Format("2006-01-02 15:04"), act.Action)
		}
	}
}

// --- stats ---

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print activity counters as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return writeIndentedJSON(cmd.OutOrStdout(), a.stats.Read())
		},
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- data ---

func newDataCmd() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage locally stored data",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records and when each was last written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.ListRecords()
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored data")
				return nil
			}
			printRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}

	var confirm bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all stored progress and the latest assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				printWarning("This will delete ALL stored data. Use --confirm to proceed.")
				return nil
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.ListRecords()
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}
			n, err := store.Purge()
			if err != nil {
				return fmt.Errorf("purging records: %w", err)
			}
			printRecords(cmd.OutOrStdout(), recs)
			printSuccess("All data purged (%d records)", n)
			return nil
		},
	}
	purgeCmd.Flags().BoolVar(&confirm, "confirm", false, "confirm data purge")

	dataCmd.AddCommand(listCmd, purgeCmd)
	return dataCmd
}

func openStore() (*storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func printRecords(w io.Writer, recs []storage.RecordInfo) {
	for _, r := range recs {
		fmt.Fprintf(w, "  %-18s %s\n", r.Key, faint("written "+r.UpdatedAt.Local().Format(time.DateTime)))
	}
}

// --- config ---

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range config.ShowAll(cfg) {
				fmt.Fprintf(out, "  %s = %s %s\n", bold(k.Key), k.Value, faint("("+k.EnvVar+")"))
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Valid keys:\n  " + strings.Join(config.ValidKeys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.SetKey(key, value); err != nil {
				return err
			}
			printSuccess("Set %s = %s", key, value)
			return nil
		},
	}

	unsetCmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value, restoring its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.UnsetKey(args[0]); err != nil {
				return err
			}
			printSuccess("Unset %s", args[0])
			return nil
		},
	}

	configCmd.AddCommand(showCmd, setCmd, unsetCmd)
	return configCmd
}
