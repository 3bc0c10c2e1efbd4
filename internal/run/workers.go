package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tovenaar/docsum/internal/common"
	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/analytics"
	"github.com/tovenaar/docsum/pkg/caching"
	"github.com/tovenaar/docsum/pkg/chunk"
	"github.com/tovenaar/docsum/pkg/extract"
	"github.com/tovenaar/docsum/pkg/lang"
	"github.com/tovenaar/docsum/pkg/llm"
	"github.com/tovenaar/docsum/pkg/mapreduce"
)

// errCancelled marks documents abandoned when the run context ends.
var errCancelled = errors.New("cancelled")

// pipeline bundles the per-run machinery shared by all workers. Every
// field is safe for concurrent use.
type pipeline struct {
	registry  *extract.Registry
	cache     *caching.Cache // nil when persistence is disabled
	detector  *lang.Detector
	analyzer  *analytics.Analytics
	policy    chunk.Policy
	client    *llm.Client
	maxTokens int
}

func run(ctx context.Context, logger *slog.Logger, p *pipeline, docs []models.Document, workerCount int) ([]Result, map[string]int) {
	logger.Info("Starting concurrent summarization phase", "doc_count", len(docs), "workers", workerCount, "model", p.client.Model())

	var wg sync.WaitGroup
	jobs := make(chan Job, len(docs))
	results := make(chan Result, len(docs))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, p, &wg, jobs, results)
	}

	for i, doc := range docs {
		jobs <- Job{Index: i, Doc: doc}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Info("All summary workers finished")

	allResults := make([]Result, len(docs))
	for result := range results {
		allResults[result.Index] = result
	}

	logger.Info("Starting MapReduce phase")
	intermediateResults := []map[string]int{}
	for _, result := range allResults {
		if result.WordCounts != nil {
			intermediateResults = append(intermediateResults, result.WordCounts)
		}
	}
	totalWordCounts := mapreduce.Reduce(intermediateResults)

	return allResults, totalWordCounts
}

func worker(ctx context.Context, id int, logger *slog.Logger, p *pipeline, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("Worker started document", "worker_id", id, "file", job.Doc.Name)
		result := p.process(ctx, id, logger, job)
		if result.Error != nil {
			logger.Error("Worker failed document", "worker_id", id, "file", job.Doc.Name, "error_type", result.ErrorKind, "error", result.Error)
		} else {
			logger.Info("Worker finished document", "worker_id", id, "file", job.Doc.Name)
		}
		results <- result
	}
}

// process runs one document through the extract, enrich, and summarize
// chain. Failures land in the result; they never stop the batch.
func (p *pipeline) process(ctx context.Context, id int, logger *slog.Logger, job Job) Result {
	result := Result{Index: job.Index, Doc: job.Doc}

	if ctx.Err() != nil {
		result.Error = errCancelled
		result.ErrorKind = "cancelled"
		return result
	}

	doc := job.Doc
	if err := doc.Load(); err != nil {
		result.Error = fmt.Errorf("failed to read document: %w", err)
		result.ErrorKind = "read_error"
		return result
	}
	result.Doc = doc
	result.ContentHash = common.ContentHash(doc.Content)

	text, cached := "", false
	if p.cache != nil {
		text, cached = p.cache.Get(result.ContentHash)
	}
	if cached {
		logger.Info("Extracted text found in cache", "worker_id", id, "file", doc.Name, "chars", len(text))
	} else {
		extracted, strategy, err := p.registry.Extract(doc)
		if err != nil {
			result.Error = err
			result.ErrorKind = string(extract.KindOf(err))
			return result
		}
		logger.Info("Extracted text", "worker_id", id, "file", doc.Name, "strategy", strategy, "chars", len(extracted))
		text = extracted
		if p.cache != nil {
			if err := p.cache.Set(result.ContentHash, text); err != nil {
				logger.Warn("Failed to cache extracted text", "file", doc.Name, "error", err)
			}
		}
	}

	result.Language, result.LangOK = p.detector.Detect(text)
	result.WordCounts = mapreduce.Map(text, p.analyzer)

	fitted := p.policy.Fit(text)
	result.Truncated = len(fitted) < len(text)
	result.EstimatedTokens = p.policy.EstimateTokens(fitted)
	if result.Truncated {
		logger.Info("Document truncated to token budget", "worker_id", id, "file", doc.Name, "original_chars", len(text), "kept_chars", len(fitted))
	}

	if ctx.Err() != nil {
		result.Error = errCancelled
		result.ErrorKind = "cancelled"
		return result
	}

	label := fmt.Sprintf("Filename: %s (Type: %s)", doc.Name, doc.Ext())
	summary, err := p.client.Summarize(ctx, fitted, label, p.maxTokens)
	if err != nil {
		if ctx.Err() != nil {
			result.Error = errCancelled
			result.ErrorKind = "cancelled"
			return result
		}
		result.Error = err
		result.ErrorKind = string(llm.KindOf(err))
		return result
	}
	result.Summary = summary

	return result
}
