package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gnoverse/knowscrape/internal/crawl"
	"github.com/gnoverse/knowscrape/internal/extract"
	"github.com/gnoverse/knowscrape/internal/format"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "output-dir",
			Value: "artifacts",
			Usage: "artifact store root directory",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: 4,
			Usage: "number of concurrent pipeline workers",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
		&cli.StringFlag{
			Name:  "sources",
			Usage: "yaml file listing source items",
		},
	}
}

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "per-request network timeout",
		},
		&cli.StringFlag{
			Name:  "max-age",
			Value: "24h",
			Usage: "reuse cached raw pages younger than this",
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "knowscrape",
		Usage: "collect tutorial and documentation text into a local artifact store",
		Commands: []*cli.Command{
			{
				Name:   "crawl",
				Usage:  "fetch example-site pages and write plain-text artifacts",
				Flags:  append(append(commonFlags(), fetchFlags()...), crawlFlags()...),
				Action: crawl.Action,
			},
			{
				Name:   "html",
				Usage:  "fetch example-site pages and write HTML-preserving artifacts",
				Flags:  append(append(commonFlags(), fetchFlags()...), crawlFlags()...),
				Action: crawl.Action,
			},
			{
				Name:   "format",
				Usage:  "re-normalize already-fetched pages from the raw cache",
				Flags:  append(commonFlags(), outputModeFlag()),
				Action: format.Action,
			},
			{
				Name:  "extract",
				Usage: "fetch documentation-repository markdown and write artifacts",
				Flags: append(append(append(commonFlags(), fetchFlags()...), outputModeFlag()),
					&cli.StringFlag{Name: "owner", Value: "gnolang", Usage: "repository owner"},
					&cli.StringFlag{Name: "repo", Value: "gno", Usage: "repository name"},
					&cli.StringFlag{Name: "branch", Value: "master", Usage: "repository branch"},
					&cli.StringFlag{Name: "docs-path", Value: "docs", Usage: "directory holding the docs"},
					&cli.StringFlag{Name: "token", Usage: "API token (falls back to GITHUB_TOKEN)"},
				),
				Action: extract.Action,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func crawlFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "urls",
			Usage: "comma-separated example-page URLs",
		},
		&cli.BoolFlag{
			Name:  "force-fetch",
			Usage: "ignore the raw-page cache and refetch everything",
		},
	}
}

func outputModeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output-mode",
		Value: "plain",
		Usage: "artifact output mode: plain or html",
	}
}
