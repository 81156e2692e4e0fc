package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommitURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantSHA   string
		wantErr   bool
	}{
		{
			name:      "Valid HTTPS URL",
			url:       "https://github.com/sevigo/grade-warden/commit/a3f6c9e0b1d2a3f6c9e0b1d2a3f6c9e0b1d2a3f6",
			wantOwner: "sevigo",
			wantRepo:  "grade-warden",
			wantSHA:   "a3f6c9e0b1d2a3f6c9e0b1d2a3f6c9e0b1d2a3f6",
			wantErr:   false,
		},
		{
			name:      "Valid URL without scheme",
			url:       "github.com/sevigo/grade-warden/commit/deadbeef",
			wantOwner: "sevigo",
			wantRepo:  "grade-warden",
			wantSHA:   "deadbeef",
			wantErr:   false,
		},
		{
			name:      "URL with trailing slash",
			url:       "https://github.com/sevigo/grade-warden/commit/1234abc/",
			wantOwner: "sevigo",
			wantRepo:  "grade-warden",
			wantSHA:   "1234abc",
			wantErr:   false,
		},
		{
			name:    "Not a commit URL",
			url:     "https://github.com/sevigo/grade-warden/pull/123",
			wantErr: true,
		},
		{
			name:    "SHA too short",
			url:     "https://github.com/sevigo/grade-warden/commit/abc",
			wantErr: true,
		},
		{
			name:    "Non-hex SHA",
			url:     "https://github.com/sevigo/grade-warden/commit/not-a-sha-at-all",
			wantErr: true,
		},
		{
			name:    "Not GitHub",
			url:     "https://gitlab.com/sevigo/grade-warden/commit/deadbeef",
			wantErr: true,
		},
		{
			name:    "Trailing path segments",
			url:     "https://github.com/sevigo/grade-warden/commit/deadbeef/files",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, sha, err := ParseCommitURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantOwner, owner)
				assert.Equal(t, tt.wantRepo, repo)
				assert.Equal(t, tt.wantSHA, sha)
			}
		})
	}
}
