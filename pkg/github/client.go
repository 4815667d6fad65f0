// Package github talks to the documentation repository: it enumerates the
// markdown files under the docs tree and retrieves their contents.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/fetcher"
)

const defaultBaseURL = "https://api.github.com"

// Client reads a repository subtree through the GitHub REST API.
type Client struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	// BasePath is the repository directory holding the docs, e.g. "docs".
	BasePath string

	client  *http.Client
	timeout time.Duration
	// token is sent as a bearer credential when non-empty. Opaque.
	token string
}

func NewClient(owner, repo, branch, basePath, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:  defaultBaseURL,
		Owner:    owner,
		Repo:     repo,
		Branch:   branch,
		BasePath: basePath,
		client:   &http.Client{},
		timeout:  timeout,
		token:    token,
	}
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type treeResponse struct {
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ListDocFiles walks the repository tree and returns one doc SourceItem per
// markdown file under BasePath, in tree order. Identifiers are paths
// relative to BasePath.
func (c *Client) ListDocFiles(ctx context.Context) ([]models.SourceItem, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.BaseURL, c.Owner, c.Repo, c.Branch)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository tree: %w", err)
	}

	var tree treeResponse
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode repository tree: %w", err)
	}
	// A truncated listing would silently drop doc files, so refuse it.
	if tree.Truncated {
		return nil, fmt.Errorf("repository tree listing for %s/%s is truncated; pass an explicit source list instead", c.Owner, c.Repo)
	}

	prefix := c.BasePath + "/"
	var items []models.SourceItem
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		if !strings.HasPrefix(entry.Path, prefix) || !strings.HasSuffix(entry.Path, ".md") {
			continue
		}
		items = append(items, models.SourceItem{
			Identifier: strings.TrimPrefix(entry.Path, prefix),
			Category:   models.CategoryDoc,
		})
	}
	return items, nil
}

// Fetch retrieves one markdown file. The item identifier is the path
// relative to BasePath, as produced by ListDocFiles. Satisfies the pipeline
// fetcher contract for doc items.
func (c *Client) Fetch(ctx context.Context, item models.SourceItem) (*models.RawPage, error) {
	full := path.Join(c.BasePath, item.Identifier)
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.BaseURL, c.Owner, c.Repo, full, c.Branch)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, &fetcher.FetchError{Identifier: item.Identifier, Err: err}
	}

	var contents contentsResponse
	if err := json.Unmarshal(body, &contents); err != nil {
		return nil, &fetcher.FetchError{Identifier: item.Identifier, Err: fmt.Errorf("failed to decode contents response: %w", err)}
	}
	if contents.Encoding != "base64" {
		return nil, &fetcher.FetchError{Identifier: item.Identifier, Err: fmt.Errorf("unexpected content encoding: %q", contents.Encoding)}
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(contents.Content, "\n", ""))
	if err != nil {
		return nil, &fetcher.FetchError{Identifier: item.Identifier, Err: fmt.Errorf("failed to decode file content: %w", err)}
	}

	return &models.RawPage{
		Item:        item,
		Content:     raw,
		ContentType: "text/markdown",
	}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "knowscrape/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
