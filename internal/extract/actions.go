// Package extract implements the extract command: enumerate markdown files
// in the documentation repository and run them through the pipeline.
package extract

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gnoverse/knowscrape/internal/common"
	"github.com/gnoverse/knowscrape/models"
	"github.com/gnoverse/knowscrape/pkg/github"
)

func Action(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	mode, err := models.ParseOutputMode(c.String("output-mode"))
	if err != nil {
		return err
	}

	token := c.String("token")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	cacheTTL, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return fmt.Errorf("invalid max-age duration: %w", err)
	}

	cfg := &models.Config{
		OutputDir:   c.String("output-dir"),
		OutputMode:  mode,
		WorkerCount: c.Int("workers"),
		Timeout:     c.Duration("timeout"),
		CacheTTL:    cacheTTL,
		AuthToken:   token,
	}

	client := newDocClient(cfg, c.String("owner"), c.String("repo"), c.String("branch"), c.String("docs-path"))

	if c.IsSet("sources") {
		cfg.Sources, err = models.LoadSources(c.String("sources"))
		if err != nil {
			return err
		}
	} else {
		logger.Info("enumerating documentation files",
			"owner", c.String("owner"),
			"repo", c.String("repo"),
			"branch", c.String("branch"),
			"path", c.String("docs-path"),
		)
		cfg.Sources, err = client.ListDocFiles(c.Context)
		if err != nil {
			// Unresolvable source list is a root failure: abort the run.
			return fmt.Errorf("cannot resolve source list: %w", err)
		}
		logger.Info("documentation files found", "count", len(cfg.Sources))
	}

	return common.ExecuteRun(c.Context, logger, "extract", cfg, client, false)
}

// newDocClient builds the documentation-repository client from the run
// configuration. The auth token passes through opaquely.
func newDocClient(cfg *models.Config, owner, repo, branch, basePath string) *github.Client {
	return github.NewClient(owner, repo, branch, basePath, cfg.AuthToken, cfg.Timeout)
}
