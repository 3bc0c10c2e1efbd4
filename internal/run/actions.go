package run

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tovenaar/docsum/internal/common"
	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/analytics"
	"github.com/tovenaar/docsum/pkg/artifacts"
	"github.com/tovenaar/docsum/pkg/caching"
	"github.com/tovenaar/docsum/pkg/chunk"
	"github.com/tovenaar/docsum/pkg/db"
	"github.com/tovenaar/docsum/pkg/extract"
	"github.com/tovenaar/docsum/pkg/lang"
	"github.com/tovenaar/docsum/pkg/llm"
	"github.com/tovenaar/docsum/pkg/report"
	"github.com/tovenaar/docsum/pkg/rundir"
	"github.com/tovenaar/docsum/pkg/source"
)

// masterSentinel stands in for the master summary when no document
// produced one. It is emitted without calling the model.
const masterSentinel = "No content available for summarization."

// downloadMaxAge bounds how long Drive downloads without a checksum
// stay usable between runs.
const downloadMaxAge = 24 * time.Hour

func RunAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, fileCfg, err := resolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: No API key provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Provide one with:")
		fmt.Fprintln(os.Stderr, "  export OPENROUTER_API_KEY=sk-or-...")
		fmt.Fprintln(os.Stderr, "  docsum run --api-key sk-or-... --folder ./docs")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Download cache for Drive sources. --no-save disables every write,
	// the caches included.
	var downloads *artifacts.Manager
	if !cfg.NoSave {
		downloads, err = artifacts.NewManager(cfg.ResultsDir, downloadMaxAge)
		if err != nil {
			logger.Error("failed to initialize download cache", "error", err)
			os.Exit(2)
		}
	}

	src, sourceDesc, err := selectSource(c, cfg, fileCfg, downloads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  docsum run --folder ./docs")
		fmt.Fprintln(os.Stderr, `  docsum run --files "report.pdf,notes.md"`)
		fmt.Fprintln(os.Stderr, "  docsum run --drive-folder <folder-id-or-url>")
		fmt.Fprintln(os.Stderr, `  docsum run --drive-files "<file-id>,<file-id>"`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: docsum run --help")
		os.Exit(2)
	}

	logger.Info("Listing documents", "source", sourceDesc)
	docs, err := src.List(ctx)
	if err != nil {
		if len(docs) == 0 {
			logger.Error("failed to list documents", "error", err, "source", sourceDesc)
			os.Exit(2)
		}
		logger.Warn("Partial document listing", "error", err, "listed", len(docs))
	}
	logger.Info("Documents listed", "count", len(docs))

	client, err := llm.New(llm.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Rate:    cfg.Rate,
	})
	if err != nil {
		logger.Error("failed to initialize llm client", "error", err)
		os.Exit(2)
	}

	var database *db.DB
	var runID int64
	var runRel string
	if !cfg.NoSave {
		database, err = db.OpenAt(filepath.Join(cfg.ResultsDir, db.DefaultDBName))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer database.Close()

		runID, runRel, err = database.CreateRun(len(docs), client.Model(), sourceDesc)
		if err != nil {
			logger.Error("failed to create run record", "error", err)
			os.Exit(2)
		}
		logger.Info("Run", "run_id", runID, "run_dir", runRel)
	}

	var textCache *caching.Cache
	if !cfg.NoSave {
		textCache, err = caching.NewCache(filepath.Join(cfg.ResultsDir, "cache"), 0)
		if err != nil {
			logger.Warn("Text cache disabled", "error", err)
			textCache = nil
		}
	}

	p := &pipeline{
		registry:  extract.Default(),
		cache:     textCache,
		detector:  lang.NewDetector(),
		analyzer:  &analytics.Analytics{},
		policy:    chunk.Policy{TokenBudget: cfg.TokenBudget},
		client:    client,
		maxTokens: cfg.SummaryMaxTokens,
	}

	allResults, totalWordCounts := run(ctx, logger, p, docs, cfg.Workers)

	var successCount, failedCount int
	for _, r := range allResults {
		if r.Error != nil {
			failedCount++
		} else {
			successCount++
		}
	}

	units := buildUnits(allResults)

	master := masterSentinel
	if successCount > 0 {
		logger.Info("Creating master summary", "successful", successCount)
		combined := p.policy.Fit(report.CombinedSummaries(units))
		synthesized, err := client.MasterSummary(ctx, combined, cfg.MasterMaxTokens)
		if err != nil {
			logger.Error("Failed to create master summary", "error", err)
			master = "Error creating master summary: " + err.Error()
		} else {
			master = synthesized
		}
	}

	rep := report.Build(units, master, client.Model(), time.Now())

	runAbsDir := ""
	if !cfg.NoSave {
		if err := rundir.EnsureDir(cfg.ResultsDir, runRel); err != nil {
			return fmt.Errorf("failed to create run directory: %w", err)
		}
		if err := rundir.WriteFieldsReference(cfg.ResultsDir); err != nil {
			logger.Warn("Failed to generate FIELDS.yaml reference", "error", err)
		}
		runAbsDir = rundir.Dir(cfg.ResultsDir, runRel)

		reportPath := cfg.OutputPath
		if reportPath == "" {
			reportPath = filepath.Join(runAbsDir, "summary_report.json")
		}
		if err := (report.FileSink{Path: reportPath}).Write(rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "path", reportPath)

		if err := WriteDetailsToRun(allResults, runAbsDir); err != nil {
			return fmt.Errorf("failed to write run details: %w", err)
		}
		if err := WriteFailedDocsToRun(collectFailedDocs(allResults), runAbsDir); err != nil {
			logger.Warn("Failed to write failed docs file", "error", err)
		}

		for _, result := range allResults {
			if result.ContentHash == "" {
				logger.Warn("Skipping history row for unreadable document", "file", result.Doc.Name)
				continue
			}
			docID, err := database.UpsertDocument(result.Doc.Name, result.Doc.Ext(), result.Doc.Origin, result.Doc.Path, result.ContentHash, result.Doc.Size)
			if err != nil {
				logger.Warn("Failed to upsert document", "file", result.Doc.Name, "error", err)
				continue
			}
			if err := database.InsertRunDocument(runID, docID, runDocumentInput(result)); err != nil {
				logger.Warn("Failed to insert run document", "file", result.Doc.Name, "error", err)
			}
		}

		if err := database.UpdateRunStats(runID, successCount, failedCount); err != nil {
			logger.Warn("Failed to update run stats in DB", "error", err)
		}

		names := make([]string, len(docs))
		for i, d := range docs {
			names[i] = d.Name
		}
		info := rundir.Info{
			RunID:       runID,
			Created:     time.Now(),
			DocCount:    len(docs),
			Success:     successCount,
			Failed:      failedCount,
			Model:       client.Model(),
			Source:      sourceDesc,
			RunDir:      runRel,
			DocsPreview: rundir.DocsPreview(names, 3),
		}
		if err := rundir.UpdateIndex(cfg.ResultsDir, info); err != nil {
			logger.Warn("Failed to update run index", "error", err)
		}
	}

	if cfg.Stdout {
		if err := (report.StdoutSink{}).Write(rep); err != nil {
			return fmt.Errorf("failed to write report to stdout: %w", err)
		}
	} else {
		printReport(rep, totalWordCounts)
		if runAbsDir != "" {
			fmt.Printf("Run %d: %d/%d documents successful\nResults: %s\n", runID, successCount, len(docs), runAbsDir)
			fmt.Printf("\nCommands:\n")
			fmt.Printf("  docsum db run %d   # Run overview\n", runID)
			fmt.Printf("  docsum db docs %d  # Per-document outcomes\n", runID)
			fmt.Printf("  docsum db get %d   # Report and details from the run directory\n", runID)
		}
	}

	if len(docs) > 0 && successCount == 0 {
		os.Exit(2)
	}
	if failedCount > 0 {
		os.Exit(1)
	}
	return nil
}

// runDocumentInput shapes one result into its run_documents row.
func runDocumentInput(result Result) db.RunDocumentInput {
	input := db.RunDocumentInput{
		Status:    report.StatusSuccess,
		SizeBytes: result.Doc.Size,
	}
	if result.Error != nil {
		input.Status = report.StatusFailed
		input.ErrorKind = result.ErrorKind
		input.ErrorMessage = result.Error.Error()
		return input
	}
	input.EstimatedTokens = result.EstimatedTokens
	input.SummaryChars = len(result.Summary)
	if result.LangOK {
		input.Language = result.Language.Code
	}
	input.TopKeywords = formatKeywordsAsJSON(result.WordCounts, topKeywordLimit)
	return input
}

// resolveConfig merges flag, environment, and config file values. Flags
// and their environment fallbacks win over file values; file values win
// over built-in defaults.
func resolveConfig(c *cli.Context) (*models.RunConfig, *models.FileConfig, error) {
	fileCfg := &models.FileConfig{}
	if c.IsSet("config") {
		loaded, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, nil, err
		}
		fileCfg = loaded
	}

	cfg := &models.RunConfig{
		Model:            models.DefaultModel,
		BaseURL:          models.DefaultBaseURL,
		Workers:          models.DefaultWorkers,
		TokenBudget:      models.DefaultTokenBudget,
		SummaryMaxTokens: models.DefaultSummaryMaxTokens,
		MasterMaxTokens:  models.DefaultMasterMaxTokens,
		Timeout:          models.DefaultTimeoutSec * time.Second,
		Rate:             models.DefaultRate,
		Extensions:       models.DefaultExtensions,
		ResultsDir:       artifacts.DefaultBaseDir,
		OutputPath:       c.String("output"),
		NoSave:           c.Bool("no-save"),
		Stdout:           c.Bool("stdout"),
	}

	if fileCfg.Model != "" {
		cfg.Model = fileCfg.Model
	}
	if fileCfg.APIKey != "" {
		cfg.APIKey = fileCfg.APIKey
	}
	if fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.Workers > 0 {
		cfg.Workers = fileCfg.Workers
	}
	if fileCfg.TokenBudget > 0 {
		cfg.TokenBudget = fileCfg.TokenBudget
	}
	if fileCfg.TimeoutSec > 0 {
		cfg.Timeout = time.Duration(fileCfg.TimeoutSec) * time.Second
	}
	if fileCfg.Rate > 0 {
		cfg.Rate = fileCfg.Rate
	}
	if len(fileCfg.Extensions) > 0 {
		cfg.Extensions = fileCfg.Extensions
	}
	if fileCfg.ResultsDir != "" {
		cfg.ResultsDir = fileCfg.ResultsDir
	}

	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("api-key") {
		cfg.APIKey = c.String("api-key")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("max-tokens") {
		cfg.TokenBudget = c.Int("max-tokens")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = time.Duration(c.Int("timeout")) * time.Second
	}
	if c.IsSet("rate") {
		cfg.Rate = c.Float64("rate")
	}

	return cfg, fileCfg, nil
}

// selectSource picks the document source from the input flags. Exactly
// one input may be configured; the config file's drive folder serves as
// the fallback when no flag names one.
func selectSource(c *cli.Context, cfg *models.RunConfig, fileCfg *models.FileConfig, downloads *artifacts.Manager) (source.Source, string, error) {
	var chosen []string
	for _, name := range []string{"folder", "files", "drive-folder", "drive-files"} {
		if c.IsSet(name) {
			chosen = append(chosen, "--"+name)
		}
	}
	if len(chosen) > 1 {
		return nil, "", fmt.Errorf("%s cannot be combined; choose one input", strings.Join(chosen, " and "))
	}

	driveKey := os.Getenv("GOOGLE_DRIVE_API_KEY")
	if driveKey == "" {
		driveKey = fileCfg.DriveAPIKey
	}

	switch {
	case c.IsSet("folder"):
		dir := c.String("folder")
		return source.DirSource{Dir: dir, Extensions: cfg.Extensions}, "folder:" + dir, nil
	case c.IsSet("files"):
		paths := common.SplitRefs(c.String("files"))
		if len(paths) == 0 {
			return nil, "", fmt.Errorf("--files is empty")
		}
		return source.FileSource{Paths: paths}, fmt.Sprintf("files:%d", len(paths)), nil
	case c.IsSet("drive-folder"):
		folder := c.String("drive-folder")
		return &source.DriveSource{APIKey: driveKey, Folder: folder, Cache: downloads}, "drive-folder:" + folder, nil
	case c.IsSet("drive-files"):
		refs := common.SplitRefs(c.String("drive-files"))
		if len(refs) == 0 {
			return nil, "", fmt.Errorf("--drive-files is empty")
		}
		return &source.DriveSource{APIKey: driveKey, Files: refs, Cache: downloads}, fmt.Sprintf("drive-files:%d", len(refs)), nil
	}

	if fileCfg.DriveFolder != "" {
		return &source.DriveSource{APIKey: driveKey, Folder: fileCfg.DriveFolder, Cache: downloads}, "drive-folder:" + fileCfg.DriveFolder, nil
	}

	return nil, "", fmt.Errorf("no documents provided")
}
