package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"points/internal/config"
	"points/internal/ingest"
)

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage registered participants",
	}
	cmd.AddCommand(rosterJoinCmd())
	cmd.AddCommand(rosterListCmd())
	cmd.AddCommand(rosterImportCmd())
	return cmd
}

func rosterJoinCmd() *cobra.Command {
	var rawID string
	cmd := &cobra.Command{
		Use:   "join <name>",
		Short: "Register a participant or refresh its display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id := uuid.New()
			if rawID != "" {
				parsed, err := uuid.Parse(rawID)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				id = parsed
			}

			cfg, err := config.LoadProjectConfig(configPath)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			p, err := ingest.Join(ctx, db, id, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&rawID, "id", "", "Participant UUID (a new one is generated when empty)")
	return cmd
}

func rosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadProjectConfig(configPath)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			participants, err := db.ListParticipants(ctx)
			if err != nil {
				return err
			}
			if len(participants) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No participants found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTEAM\tTAGS\tOPERATOR\tID")
			for _, p := range participants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.Name, p.Team, strings.Join(p.Tags, ","), p.Operator, p.ID)
			}
			return w.Flush()
		},
	}
}

func rosterImportCmd() *cobra.Command {
	var excludes []string
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import participants and teams from roster YAML files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadProjectConfig(configPath)
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			result, err := ingest.Run(ctx, db, args, ingest.Options{Teams: cfg.Teams, Exclude: excludes})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Import complete.")
			fmt.Fprintf(out, "  Participants upserted: %d\n", result.ParticipantsUpserted)
			fmt.Fprintf(out, "  Teams upserted:        %d\n", result.TeamsUpserted)
			fmt.Fprintf(out, "  Files skipped:         %d\n", result.FilesSkipped)

			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
				for _, item := range result.Errors {
					fmt.Fprintf(out, "  - %v\n", item)
				}
				return fmt.Errorf("import completed with errors")
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Paths to skip while walking directories")
	return cmd
}
