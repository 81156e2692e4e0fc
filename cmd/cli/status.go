package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/grade-warden/internal/config"
	"github.com/sevigo/grade-warden/internal/github"
	"github.com/sevigo/grade-warden/internal/grader"
	"github.com/sevigo/grade-warden/internal/logger"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <commits-file> <tests-file>",
	Short: "Shows the current grade of every selected assignment",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log := logger.New(cfg.LogLevel, cfg.LogFormat, nil)

		if cfg.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN is not set\n\nTip: Set the GITHUB_TOKEN environment variable or pass --github-token")
		}

		metadata, err := resolveListings(args[0], args[1])
		if err != nil {
			return err
		}

		ghClient := github.NewPATClient(ctx, cfg.GitHubToken, log)
		g := grader.New(ctx, metadata, ghClient, grader.WithLogger(log))
		scores := g.AssignmentScores(ctx)

		if outputJSON {
			type row struct {
				Author string `json:"author"`
				Score  *int   `json:"score"`
			}
			rows := make([]row, 0, len(scores))
			for _, s := range scores {
				rows = append(rows, row{Author: s.Author, Score: s.Score})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rows)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "AUTHOR\tSCORE")
		for _, s := range scores {
			if s.Score != nil {
				fmt.Fprintf(w, "%s\t%d\n", s.Author, *s.Score)
			} else {
				fmt.Fprintf(w, "%s\t-\n", s.Author)
			}
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	statusCmd.Flags().IntVar(&fromLine, "from", 1, "first listing line to include (1-based, inclusive)")
	statusCmd.Flags().IntVar(&toLine, "to", 0, "last listing line to include (1-based, inclusive; 0 means through the end)")
	rootCmd.AddCommand(statusCmd)
}
