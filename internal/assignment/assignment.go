// Package assignment resolves listing rows into graded units of work.
package assignment

import (
	"fmt"

	"github.com/sevigo/grade-warden/internal/gitutil"
	"github.com/sevigo/grade-warden/internal/listing"
)

// Metadata identifies one student's submission: the commit to grade and
// the CI build that exercised it. Metadata is resolved fresh on every
// run from the input listings and never persisted.
type Metadata struct {
	Author    string
	Owner     string
	Repo      string
	SHA       string
	CommitURL string
	TestsURL  string
}

// Resolve turns the selected index range of the parallel listings into
// metadata records. A row whose commit URL does not parse as a GitHub
// commit produces an error string instead of a record; the rest of the
// batch is unaffected. Output order follows the listings and repeated
// commit URLs are kept as-is.
func Resolve(commits, tests []listing.Row, b listing.Bounds) ([]Metadata, []string) {
	var metadata []Metadata
	var errs []string

	for i := max(b.Start, 0); i < len(commits) && i <= b.End; i++ {
		row := commits[i]
		owner, repo, sha, err := gitutil.ParseCommitURL(row.URL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("GitHub commit missing for %s", row.Author))
			continue
		}

		// The tests listing is joined positionally; a shorter tests
		// file leaves the URL empty rather than failing the row.
		var testsURL string
		if i < len(tests) {
			testsURL = tests[i].URL
		}

		metadata = append(metadata, Metadata{
			Author:    row.Author,
			Owner:     owner,
			Repo:      repo,
			SHA:       sha,
			CommitURL: row.URL,
			TestsURL:  testsURL,
		})
	}

	return metadata, errs
}
