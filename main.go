package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tovenaar/docsum/internal/db"
	"github.com/tovenaar/docsum/internal/extract"
	"github.com/tovenaar/docsum/internal/run"
	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/help"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsum",
		Usage: "Summarize document collections with an LLM",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Summarize documents from a folder, file list, or Google Drive",
				Action: run.RunAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Local folder of documents to summarize",
					},
					&cli.StringFlag{
						Name:  "files",
						Usage: "Comma-separated file paths",
					},
					&cli.StringFlag{
						Name:    "drive-folder",
						Usage:   "Public Google Drive folder ID or URL",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:  "drive-files",
						Usage: "Comma-separated public Google Drive file IDs or URLs",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Write the JSON report to this path instead of the run directory",
					},
					&cli.StringFlag{
						Name:    "model",
						Usage:   "OpenRouter model to use",
						Value:   models.DefaultModel,
						EnvVars: []string{"DOCSUM_MODEL"},
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "OpenRouter API key",
						EnvVars: []string{"OPENROUTER_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "base-url",
						Usage:   "OpenRouter-compatible API base URL",
						Value:   models.DefaultBaseURL,
						EnvVars: []string{"DOCSUM_BASE_URL"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent summarization workers",
						Value: models.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Token budget per document before truncation",
						Value: models.DefaultTokenBudget,
					},
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "LLM request timeout in seconds",
						Value: models.DefaultTimeoutSec,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "LLM requests per second",
						Value: models.DefaultRate,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML config file (flags and env vars override it)",
					},
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "Skip all writes: no run directory, database row, or caches",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Print the JSON report to stdout instead of the console summary",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Only log errors",
					},
				},
			},
			{
				Name:   "extract",
				Usage:  "Extract text from local files without calling the LLM",
				Action: extract.ExtractAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "files",
						Usage: "Comma-separated file paths or glob patterns",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Print per-file stats as JSON instead of raw text",
					},
					&cli.StringFlag{
						Name:  "fields",
						Usage: "Comma-separated stat fields to include (implies --stats)",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Only log errors",
					},
				},
			},
			{
				Name:   "formats",
				Usage:  "List supported file formats and extraction strategies",
				Action: extract.FormatsAction,
			},
			{
				Name:  "db",
				Usage: "Inspect run history",
				Subcommands: []*cli.Command{
					{
						Name:   "runs",
						Usage:  "List all runs with stats",
						Action: db.RunsAction,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum number of runs to list",
								Value: 20,
							},
						},
					},
					{
						Name:      "run",
						Usage:     "Show details for a run (latest if no ID given)",
						ArgsUsage: "[run_id]",
						Action:    db.RunAction,
					},
					{
						Name:      "get",
						Usage:     "Print a run artifact file",
						ArgsUsage: "[run_id]",
						Action:    db.GetRunAction,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "file",
								Usage: "Which file to print: report, details, or failed",
								Value: "report",
							},
						},
					},
					{
						Name:   "query",
						Usage:  "Filter runs",
						Action: db.QueryRunsAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "today",
								Usage: "Only runs created today",
							},
							&cli.BoolFlag{
								Name:  "failed",
								Usage: "Only runs with failures",
							},
							&cli.StringFlag{
								Name:  "name",
								Usage: "Only runs that processed a document matching this name pattern",
							},
						},
					},
					{
						Name:      "docs",
						Usage:     "Per-document outcomes for a run",
						ArgsUsage: "[run_id]",
						Action:    db.DocsAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "failed",
								Usage: "Only failed documents",
							},
						},
					},
					{
						Name:   "init",
						Usage:  "Initialize the database schema",
						Action: db.InitAction,
					},
				},
			},
			{
				Name:  "coldstart",
				Usage: "Print a YAML quickstart for LLM agents",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}
