// Package listing reads the instructor-supplied assignment listings.
//
// A listing is a plain text file with one assignment per line, author
// first, URL second. Two listings are used in lockstep: one mapping
// authors to commits, one mapping the same authors to CI builds. Line i
// of one corresponds to line i of the other.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one line of a listing: an author name and a URL. Rows are
// joined positionally with the parallel listing, by index.
type Row struct {
	Author string
	URL    string
}

// Read parses a listing from r. Empty and whitespace-only lines are
// skipped. Only the first two whitespace-separated tokens of a line are
// used; a line with a single token produces a row with an empty URL,
// which the resolver later reports.
func Read(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := Row{Author: fields[0]}
		if len(fields) > 1 {
			row.URL = fields[1]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}
	return rows, nil
}

// ReadFile reads the listing stored at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %s: %w", path, err)
	}
	return rows, nil
}

// Bounds is a zero-based inclusive index range into a listing. An End
// past the last row is clamped silently during resolution; a Start past
// the last row or beyond End selects nothing.
type Bounds struct {
	Start int
	End   int
}

// BoundsFromLines converts the 1-based inclusive line numbers the
// instructor types into zero-based bounds.
func BoundsFromLines(first, last int) Bounds {
	return Bounds{Start: first - 1, End: last - 1}
}
