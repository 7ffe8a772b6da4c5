// Package source provides read-only access to a GitHub repository.
//
// Every accessor fails soft: a missing file and a failed fetch look the
// same to callers. Downstream components treat absence as a degraded
// input, never as an error to surface.
package source

import (
	"context"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// DefaultTreeDepth bounds FileTree when the caller passes no depth.
const DefaultTreeDepth = 2

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int    `json:"size,omitempty"`
}

// TreeEntry is one blob path from a shallow repository tree.
type TreeEntry struct {
	Path string `json:"path"`
}

// Reader is the read-only repository accessor used by the analyzer and
// both agents.
type Reader interface {
	FileContent(ctx context.Context, owner, repo, path string) (string, bool)
	Listing(ctx context.Context, owner, repo, path string) ([]Entry, bool)
	FileTree(ctx context.Context, owner, repo string, maxDepth int) []TreeEntry
}

// GitHubReader reads repository contents through the GitHub API using a
// caller-supplied token. The token is assumed to be already authenticated.
type GitHubReader struct {
	client *github.Client
}

// NewGitHubReader builds a reader for one request. An empty token yields
// an unauthenticated client, which still works for public repositories.
func NewGitHubReader(ctx context.Context, token string) *GitHubReader {
	token = strings.TrimSpace(token)
	if token == "" {
		return &GitHubReader{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubReader{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// FileContent fetches a single file. The second return value is false
// when the path does not resolve to a file or the fetch fails.
func (r *GitHubReader) FileContent(ctx context.Context, owner, repo, path string) (string, bool) {
	file, _, _, err := r.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil || file == nil {
		return "", false
	}
	content, err := file.GetContent()
	if err != nil {
		return "", false
	}
	return content, true
}

// Listing fetches a directory listing. Requesting a file path yields a
// single-entry listing for that file.
func (r *GitHubReader) Listing(ctx context.Context, owner, repo, path string) ([]Entry, bool) {
	file, dir, _, err := r.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, false
	}
	if file != nil {
		return []Entry{{
			Name: file.GetName(),
			Path: file.GetPath(),
			Type: file.GetType(),
			Size: file.GetSize(),
		}}, true
	}
	out := make([]Entry, 0, len(dir))
	for _, e := range dir {
		out = append(out, Entry{
			Name: e.GetName(),
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: e.GetSize(),
		})
	}
	return out, true
}

// FileTree returns blob paths from the repository tree, keeping only
// entries at most maxDepth levels deep. The full recursive tree is
// fetched once and filtered locally; depth bounding keeps the result
// small for large repositories.
func (r *GitHubReader) FileTree(ctx context.Context, owner, repo string, maxDepth int) []TreeEntry {
	if maxDepth <= 0 {
		maxDepth = DefaultTreeDepth
	}
	tree, _, err := r.client.Git.GetTree(ctx, owner, repo, "HEAD", true)
	if err != nil || tree == nil {
		return nil
	}
	var out []TreeEntry
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		path := e.GetPath()
		if strings.Count(path, "/") >= maxDepth {
			continue
		}
		out = append(out, TreeEntry{Path: path})
	}
	return out
}
