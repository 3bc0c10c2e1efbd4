package help

const ColdstartYAML = `# docsum Quick Start

sources:
  folder: "Local directory, filtered by supported extensions"
  files: "Explicit file list (comma-separated paths)"
  drive-folder: "Public Google Drive folder ID or URL"
  drive-files: "Public Google Drive file IDs or URLs (comma-separated)"

output_modes:
  run_dir: "Report and details written under docsum-results/runs/ (default)"
  stdout: "JSON report to stdout (--stdout)"
  no_save: "Nothing written to disk (--no-save)"

commands:
  basic_run: |
    docsum run --folder ./docs

  explicit_files: |
    docsum run --files "report.pdf,notes.txt,data.csv"

  drive_folder: |
    docsum run --drive-folder 1AbC_dEfGhIjKlMnOpQrStUvWxYz

  extract_only: |
    docsum extract --files "./docs/*.pdf" --stats

  list_runs: |
    docsum db runs

  run_details: |
    docsum db run 5

  get_run_content: |
    docsum db get --file=details 5

  query_runs: |
    docsum db query --today
    docsum db query --failed
    docsum db query --name=report.pdf

  multi_stage: |
    # Step 1: Summarize a folder
    docsum run --folder ./docs

    # Step 2: List runs and get latest ID
    docsum db runs

    # Step 3: Inspect per-document outcomes
    docsum db docs <run_id>

    # Step 4: Re-run only the failures after fixing inputs
    docsum db get --file=failed <run_id>

config:
  api_key: "OPENROUTER_API_KEY env var, --api-key flag, or config file"
  model: "DOCSUM_MODEL env var or --model flag (default google/gemma-2-9b-it:free)"
  file: "docsum run --config docsum.yaml (flags and env override the file)"

key_files:
  - "docsum-results/FIELDS.yaml (field reference)"
  - "docsum-results/index.yaml (all runs)"
  - "docsum-results/runs/2026-01-15-{id}/summary_report.json (full report)"
  - "docsum-results/runs/2026-01-15-{id}/run-details.yaml (per-document metadata)"

run_system:
  - "Runs tracked in SQLite database (docsum-results/docsum.db)"
  - "Auto-incrementing run IDs (1, 2, 3...)"
  - "Run directories: runs/2026-01-15-1 (date + ID)"
  - "Extracted text cached by content hash, repeat runs skip extraction"
  - "Use 'docsum db runs' to list all runs"
  - "Use 'docsum db run <id>' for details"
  - "Use 'docsum db get --file=details <id>' to see YAML content"

db_commands:
  runs: "List all runs with stats"
  run_id: "Show detailed info for run"
  get_id: "Cat run files (--file=report|details|failed)"
  query: "Filter runs (--today, --failed, --name=pattern)"
  docs_id: "Per-document outcomes with language and keywords"
  init: "Initialize database schema"

run_invariants:
  - "Report order matches listing order regardless of worker scheduling"
  - "Run dirs: YYYY-MM-DD-{id} for chronological order"
  - "failed-docs.yaml only created if errors occurred"
  - "summary_report.json has all documents (success + failed)"
  - "One bad document never aborts the batch"

query_examples:
  list_all_runs: 'docsum db runs'
  show_run_5: 'docsum db run 5'
  get_details_yaml: 'docsum db get --file=details 5'
  get_report_json: 'docsum db get --file=report 5'
  query_today: 'docsum db query --today'
  query_failed: 'docsum db query --failed'
  query_name_pattern: 'docsum db query --name=report.pdf'
  filter_truncated: 'docsum db get --file=details 5 | yq ".[] | select(.truncated == true)"'
  filter_language: 'docsum db get --file=details 5 | yq ".[] | select(.language == \"en\")"'

error_behavior:
  - "Unsupported formats: recorded per document, batch continues"
  - "LLM errors: classified (rate_limited, auth_failed, timeout, ...)"
  - "Runtime errors: logged to failed-docs.yaml"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure"
`
