package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tovenaar/docsum/pkg/artifacts"
	dbpkg "github.com/tovenaar/docsum/pkg/db"
	"github.com/urfave/cli/v2"
)

func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	limit := c.Int("limit")
	runs, err := database.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-6s %-8s %-8s %-28s %-24s\n",
		"ID", "Created", "Docs", "Success", "Failed", "Model", "Run Dir")
	fmt.Println(strings.Repeat("-", 120))

	// Print each run
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-6d %-8d %-8d %-28s %-24s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.DocCount,
			r.SuccessCount,
			r.FailedCount,
			r.Model,
			r.RunDir,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'docsum db run <id>' to see details\n")

	return nil
}

// runAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	// Get run info
	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	// Get per-document outcomes for this run
	docs, err := database.GetRunDocuments(runID)
	if err != nil {
		return fmt.Errorf("failed to get run documents: %w", err)
	}

	// Print run details
	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Directory:   %s\n", run.RunDir)
	fmt.Printf("Documents:   %d total (%d success, %d failed)\n",
		run.DocCount, run.SuccessCount, run.FailedCount)
	fmt.Printf("Model:       %s\n", run.Model)
	fmt.Printf("Source:      %s\n", run.Source)

	// Print document outcomes if available
	if len(docs) > 0 {
		fmt.Printf("\nDocuments (%d):\n", len(docs))
		fmt.Println(strings.Repeat("-", 60))
		for i, d := range docs {
			fmt.Printf("%2d. [%s] %s\n", i+1, d.Status, d.Name)
			if d.Status == "failed" {
				fmt.Printf("    Error: [%s] %s\n", d.ErrorKind, d.ErrorMessage)
			} else {
				fmt.Printf("    Type: %s | Size: %d bytes | Tokens: ~%d\n",
					d.FileType, d.SizeBytes, d.EstimatedTokens)
			}
		}
	}

	fmt.Printf("\nTip: Use 'docsum db get %d' to see the full report\n", runID)

	return nil
}

// getRunAction retrieves and prints run artifact files
func GetRunAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	// Get run to find directory
	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	// Determine which file to read
	fileType := strings.ToLower(c.String("file"))
	var fileName string
	switch fileType {
	case "report":
		fileName = "summary_report.json"
	case "details":
		fileName = "run-details.yaml"
	case "failed":
		fileName = "failed-docs.yaml"
	default:
		return fmt.Errorf("unknown file type: %s (use: report, details, or failed)", fileType)
	}

	// Build full path (run_dir is relative to results dir)
	resultsDir := artifacts.DefaultBaseDir
	filePath := filepath.Join(resultsDir, run.RunDir, fileName)

	// Read and print file
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s\nRun directory: %s", fileName, run.RunDir)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Print run reminder as YAML comment. The report stays bare because
	// a "#" header would corrupt the JSON.
	if strings.HasSuffix(fileName, ".yaml") {
		fmt.Printf("# Run: %d\n", runID)
	}
	fmt.Print(string(data))

	return nil
}

// queryRunsAction queries runs with filters
func QueryRunsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	todayOnly := c.Bool("today")
	failedOnly := c.Bool("failed")
	namePattern := c.String("name")

	runs, err := database.QueryRuns(todayOnly, failedOnly, namePattern)
	if err != nil {
		return fmt.Errorf("failed to query runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found matching filters")
		if todayOnly {
			fmt.Println("  - Filter: today only")
		}
		if failedOnly {
			fmt.Println("  - Filter: with failures")
		}
		if namePattern != "" {
			fmt.Printf("  - Filter: document name pattern '%s'\n", namePattern)
		}
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-6s %-8s %-8s %-28s %-24s\n",
		"ID", "Created", "Docs", "Success", "Failed", "Model", "Run Dir")
	fmt.Println(strings.Repeat("-", 120))

	// Print each run
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-6d %-8d %-8d %-28s %-24s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.DocCount,
			r.SuccessCount,
			r.FailedCount,
			r.Model,
			r.RunDir,
		)
	}

	fmt.Printf("\nFound: %d runs\n", len(runs))

	return nil
}

// docsAction shows per-document outcomes for a run with analysis metadata
func DocsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	docs, err := database.GetRunDocuments(runID)
	if err != nil {
		return fmt.Errorf("failed to get run documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Printf("No documents found for run %d\n", runID)
		return nil
	}

	failedOnly := c.Bool("failed")

	if failedOnly {
		failedDocs := []dbpkg.RunDocument{}
		for _, d := range docs {
			if d.Status == "failed" {
				failedDocs = append(failedDocs, d)
			}
		}

		if len(failedDocs) == 0 {
			fmt.Printf("Run: %d\n\n", runID)
			fmt.Printf("No failed documents in this run\n")
			return nil
		}

		docs = failedDocs
	}

	fmt.Printf("Run: %d\n\n", runID)
	for i, d := range docs {
		// Line 1: document with status
		fmt.Printf("%2d. [#%d] %s (%s)\n", i+1, d.DocID, d.Name, d.FileType)

		// Line 2: outcome metadata
		if d.Status == "failed" {
			fmt.Printf("    failed | [%s] %s\n", d.ErrorKind, d.ErrorMessage)
		} else if d.Language != "" {
			fmt.Printf("    %s | %s | %d bytes | ~%d tokens | summary: %d chars\n",
				d.Status, d.Language, d.SizeBytes, d.EstimatedTokens, d.SummaryChars)
		} else {
			fmt.Printf("    %s | %d bytes | ~%d tokens | summary: %d chars\n",
				d.Status, d.SizeBytes, d.EstimatedTokens, d.SummaryChars)
		}

		// Line 3: keywords (if available)
		if d.TopKeywords != "" {
			var keywords []string
			if err := json.Unmarshal([]byte(d.TopKeywords), &keywords); err == nil && len(keywords) > 0 {
				fmt.Printf("    Keywords: %s\n", strings.Join(keywords, ", "))
			}
		}

		fmt.Println() // Blank line between documents
	}

	return nil
}

// initAction creates the database and schema ahead of the first run
func InitAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	fmt.Printf("Database ready: %s\n", database.Path())
	return nil
}
