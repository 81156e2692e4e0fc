// Package grader implements the grading state machine: deciding what a
// commit's comment thread still needs (tests link, final score) and
// aggregating inline score comments into a final grade.
//
// The state machine per assignment is Pending -> LinkEnsured -> Scored.
// Producing a handle performs the first transition; the handle's
// ComputeAndPostGrade performs the second. Assignments that already
// carry a finalized score comment are excluded at construction time,
// which makes repeated runs over the same listings idempotent.
package grader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/grade-warden/internal/assignment"
	"github.com/sevigo/grade-warden/internal/github"
)

// DefaultBaseScore is the value inline score deltas are applied to when
// no override is configured.
const DefaultBaseScore = 100

// ErrAlreadyScored is returned when a handle's grading action is
// invoked a second time. Reposting would count the first finalized
// comment into a duplicate grade, so reuse fails instead.
var ErrAlreadyScored = errors.New("grade already computed and posted for this assignment")

// ErrorHandler receives the target of a failed remote operation and the
// error, and returns a suggested process exit code for the driver. The
// grader treats the failed operation's result as empty and carries on,
// so the handler must not panic and must be safe for concurrent use.
type ErrorHandler func(target string, err error) int

// Grade is the outcome of scoring one assignment: the computed total,
// the exact comment body posted, and the posted comment's permalink.
type Grade struct {
	Score   int
	Comment string
	URL     string
}

// AssignmentScore reports one assignment's current grade. A nil Score
// means no finalized score comment was found on the commit.
type AssignmentScore struct {
	Author string
	Score  *int
}

// Option configures a Grader.
type Option func(*Grader)

// WithBaseScore overrides the default base score.
func WithBaseScore(base int) Option {
	return func(g *Grader) { g.baseScore = base }
}

// WithErrorHandler installs the handler that failed remote operations
// are funneled through.
func WithErrorHandler(h ErrorHandler) Option {
	return func(g *Grader) { g.onError = h }
}

// WithLogger sets the logger used for grading progress and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grader) { g.logger = logger }
}

// WithCelebration appends a party glyph to the finalized comment when
// the total equals the base score. The numeric part stays intact so the
// score still parses back out.
func WithCelebration() Option {
	return func(g *Grader) { g.celebrate = true }
}

// Grader walks the working set of assignments that still need grading,
// yielding one handle at a time in input order.
type Grader struct {
	gh        github.Client
	logger    *slog.Logger
	onError   ErrorHandler
	baseScore int
	celebrate bool

	all     []assignment.Metadata // every resolved assignment, for status queries
	pending []assignment.Metadata // working set: no finalized score comment yet
	next    int
}

// New builds a grader over the resolved assignments. Construction
// probes every candidate concurrently for an existing finalized score
// comment and admits only those without one; finalized assignments are
// permanently done and never re-offered. A probe that fails over the
// network degrades to "not finalized" via the error handler.
func New(ctx context.Context, metadata []assignment.Metadata, gh github.Client, opts ...Option) *Grader {
	g := &Grader{
		gh:        gh,
		logger:    slog.Default(),
		baseScore: DefaultBaseScore,
		all:       metadata,
	}
	g.onError = g.logFailure
	for _, opt := range opts {
		opt(g)
	}

	finalized := make([]bool, len(metadata))
	eg, probeCtx := errgroup.WithContext(ctx)
	for i, m := range metadata {
		eg.Go(func() error {
			comments := g.listComments(probeCtx, m)
			_, finalized[i] = findFinalScore(comments)
			return nil
		})
	}
	_ = eg.Wait() // probe goroutines never return errors

	for i, m := range metadata {
		if finalized[i] {
			g.logger.Debug("assignment already graded, skipping", "author", m.Author, "commit", m.CommitURL)
			continue
		}
		g.pending = append(g.pending, m)
	}

	g.logger.Info("grader ready", "total", len(metadata), "pending", len(g.pending))
	return g
}

// Total is the size of the working set.
func (g *Grader) Total() int { return len(g.pending) }

// Handle is a one-shot capability to grade a single assignment. By the
// time the driver sees a handle, the tests-link comment is guaranteed
// present on the commit.
type Handle struct {
	grader *Grader
	meta   assignment.Metadata

	// At is the 1-based position within the working set, not within the
	// original listings.
	At              int
	Total           int
	Author          string
	CommitURL       string
	TestsCommentURL string

	scored bool
}

// Next produces the handle for the next pending assignment, posting the
// tests-link comment first if the commit does not have one. It returns
// false when the working set is exhausted. Traversal is forward-only
// and strictly sequential: one assignment's comments are fetched and
// possibly posted to completion before the next handle exists.
func (g *Grader) Next(ctx context.Context) (*Handle, bool) {
	if g.next >= len(g.pending) {
		return nil, false
	}
	m := g.pending[g.next]
	g.next++

	return &Handle{
		grader:          g,
		meta:            m,
		At:              g.next,
		Total:           len(g.pending),
		Author:          m.Author,
		CommitURL:       m.CommitURL,
		TestsCommentURL: g.ensureTestsLink(ctx, m),
	}, true
}

// ComputeAndPostGrade re-reads the commit's comments, sums every inline
// score comment onto the base score, and posts the finalized comment.
// It fires at most once per handle; reuse returns ErrAlreadyScored
// rather than posting a duplicate grade.
func (h *Handle) ComputeAndPostGrade(ctx context.Context) (*Grade, error) {
	if h.scored {
		return nil, ErrAlreadyScored
	}
	h.scored = true

	g := h.grader
	total := g.baseScore
	for _, c := range g.listComments(ctx, h.meta) {
		if !c.IsInline() {
			continue
		}
		if delta, ok := ParseDelta(c.Body); ok {
			total += delta
		}
	}

	body := g.renderFinalScore(total)
	posted := g.postComment(ctx, h.meta, body)
	if posted == nil {
		return nil, fmt.Errorf("failed to post final score for %s", h.meta.CommitURL)
	}

	g.logger.Info("posted final grade", "author", h.meta.Author, "score", total, "url", posted.HTMLURL)
	return &Grade{Score: total, Comment: body, URL: posted.HTMLURL}, nil
}

// AssignmentScores reports the current grade of every resolved
// assignment, including those excluded from grading because they were
// already finalized. Commits are queried concurrently; a nil Score
// means no finalized comment was found.
func (g *Grader) AssignmentScores(ctx context.Context) []AssignmentScore {
	scores := make([]AssignmentScore, len(g.all))
	eg, queryCtx := errgroup.WithContext(ctx)
	for i, m := range g.all {
		eg.Go(func() error {
			scores[i].Author = m.Author
			comments := g.listComments(queryCtx, m)
			if final, ok := findFinalScore(comments); ok {
				if score, ok := ParseFinalScore(final.Body); ok {
					scores[i].Score = &score
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
	return scores
}

// ensureTestsLink returns the URL of the commit's tests-link comment,
// posting one when missing. The first matching comment in fetch order
// wins; duplicates from earlier mishaps are left alone. An empty return
// means the post failed and was absorbed by the error handler.
func (g *Grader) ensureTestsLink(ctx context.Context, m assignment.Metadata) string {
	comments := g.listComments(ctx, m)
	if link, ok := findTestsLink(comments); ok {
		return link.HTMLURL
	}

	posted := g.postComment(ctx, m, TestsLinkPrefix+m.TestsURL)
	if posted == nil {
		return ""
	}
	g.logger.Info("posted tests link", "author", m.Author, "tests", m.TestsURL)
	return posted.HTMLURL
}

// listComments degrades to an empty list on transport failure, after
// routing the error through the handler.
func (g *Grader) listComments(ctx context.Context, m assignment.Metadata) []github.CommitComment {
	comments, err := g.gh.ListCommitComments(ctx, m.Owner, m.Repo, m.SHA)
	if err != nil {
		_ = g.onError(m.CommitURL, err)
		return nil
	}
	return comments
}

// postComment degrades to nil on transport failure, which every caller
// guards against. Posting is not blindly retried: a retry could leave a
// duplicate comment behind.
func (g *Grader) postComment(ctx context.Context, m assignment.Metadata, body string) *github.CommitComment {
	comment, err := g.gh.CreateCommitComment(ctx, m.Owner, m.Repo, m.SHA, body)
	if err != nil {
		_ = g.onError(m.CommitURL, err)
		return nil
	}
	return comment
}

func (g *Grader) renderFinalScore(total int) string {
	body := fmt.Sprintf("%s %d/%d", FinalScorePrefix, total, g.baseScore)
	if g.celebrate && total == g.baseScore {
		body += " \U0001F389"
	}
	return body
}

// logFailure is the default error handler.
func (g *Grader) logFailure(target string, err error) int {
	g.logger.Error("remote comment operation failed", "target", target, "error", err)
	return 1
}

// findFinalScore returns the first commit-level finalized score comment
// in fetch order.
func findFinalScore(comments []github.CommitComment) (github.CommitComment, bool) {
	return findCommitLevel(comments, FinalScorePrefix)
}

// findTestsLink returns the first commit-level tests-link comment in
// fetch order.
func findTestsLink(comments []github.CommitComment) (github.CommitComment, bool) {
	return findCommitLevel(comments, TestsLinkPrefix)
}

func findCommitLevel(comments []github.CommitComment, prefix string) (github.CommitComment, bool) {
	for _, c := range comments {
		if !c.IsInline() && strings.HasPrefix(c.Body, prefix) {
			return c, true
		}
	}
	return github.CommitComment{}, false
}
