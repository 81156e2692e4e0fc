package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sevigo/grade-warden/internal/assignment"
	"github.com/sevigo/grade-warden/internal/config"
	"github.com/sevigo/grade-warden/internal/github"
	"github.com/sevigo/grade-warden/internal/grader"
	"github.com/sevigo/grade-warden/internal/listing"
	"github.com/sevigo/grade-warden/internal/logger"
)

var (
	fromLine int
	toLine   int
)

var gradeCmd = &cobra.Command{
	Use:   "grade <commits-file> <tests-file>",
	Short: "Grade the selected assignments interactively",
	Long: `Grade the selected assignments interactively.

For every assignment in the selected line range that has no final grade yet,
the command ensures the CI link comment is present on the commit, shows the
commit and tests-comment URLs, and waits: grade it now (aggregating the
inline score comments posted on the commit), skip it, or quit.

Examples:
  grade-warden grade commits.txt tests.txt
  grade-warden grade --from 5 --to 12 commits.txt tests.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runGrade,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	gradeCmd.Flags().IntVar(&fromLine, "from", 1, "first listing line to grade (1-based, inclusive)")
	gradeCmd.Flags().IntVar(&toLine, "to", 0, "last listing line to grade (1-based, inclusive; 0 means through the end)")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(_ *cobra.Command, args []string) error {
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
	if len(metadata) == 0 {
		warnColor.Println("Nothing selected: the line range matched no gradable assignments.")
		return nil
	}

	var remoteFailure atomic.Bool
	handler := func(target string, err error) int {
		log.Error("remote comment operation failed", "target", target, "error", err)
		remoteFailure.Store(true)
		return 1
	}

	opts := []grader.Option{
		grader.WithBaseScore(cfg.BaseScore),
		grader.WithLogger(log),
		grader.WithErrorHandler(handler),
	}
	if cfg.CelebrateFullScore {
		opts = append(opts, grader.WithCelebration())
	}

	ghClient := github.NewPATClient(ctx, cfg.GitHubToken, log)
	g := grader.New(ctx, metadata, ghClient, opts...)

	if g.Total() == 0 {
		successColor.Println("All selected assignments already have a final grade.")
		return nil
	}

	gradeLoop(ctx, g)

	if remoteFailure.Load() {
		return fmt.Errorf("one or more remote comment operations failed, see the log above")
	}
	return nil
}

// gradeLoop walks the working set one handle at a time. Quitting simply
// abandons the traversal; the remaining assignments come back on the
// next run.
func gradeLoop(ctx context.Context, g *grader.Grader) {
	reader := bufio.NewReader(os.Stdin)

	for {
		h, ok := g.Next(ctx)
		if !ok {
			break
		}

		titleColor.Printf("\n[%d/%d] %s\n", h.At, h.Total, h.Author)
		infoColor.Printf("  commit: %s\n", h.CommitURL)
		if h.TestsCommentURL != "" {
			dimColor.Printf("  tests:  %s\n", h.TestsCommentURL)
		} else {
			warnColor.Println("  tests link could not be confirmed")
		}

		switch promptAction(reader) {
		case actionQuit:
			dimColor.Println("Stopping; ungraded assignments will be offered again next run.")
			return
		case actionSkip:
			continue
		case actionGrade:
			grade, err := h.ComputeAndPostGrade(ctx)
			if err != nil {
				errorColor.Printf("  failed to post grade: %v\n", err)
				continue
			}
			successColor.Printf("  %s\n", grade.Comment)
			dimColor.Printf("  %s\n", grade.URL)
		}
	}
}

const (
	actionGrade = "g"
	actionSkip  = "s"
	actionQuit  = "q"
)

func promptAction(reader *bufio.Reader) string {
	for {
		fmt.Print("  [g]rade / [s]kip / [q]uit: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return actionQuit
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "g", "grade":
			return actionGrade
		case "s", "skip":
			return actionSkip
		case "q", "quit":
			return actionQuit
		}
	}
}

// resolveListings reads both listing files, applies the selected line
// range, and prints per-row resolution errors without aborting the rest
// of the batch.
func resolveListings(commitsPath, testsPath string) ([]assignment.Metadata, error) {
	commits, err := listing.ReadFile(commitsPath)
	if err != nil {
		return nil, err
	}
	tests, err := listing.ReadFile(testsPath)
	if err != nil {
		return nil, err
	}

	if fromLine < 1 {
		return nil, fmt.Errorf("--from must be at least 1, got %d", fromLine)
	}
	last := toLine
	if last <= 0 {
		last = len(commits)
	}
	bounds := listing.BoundsFromLines(fromLine, last)

	metadata, errs := assignment.Resolve(commits, tests, bounds)
	for _, e := range errs {
		warnColor.Println(e)
	}
	slog.Debug("resolved listings", "selected", len(metadata), "errors", len(errs))

	return metadata, nil
}
