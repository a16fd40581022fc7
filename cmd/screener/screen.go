package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/ranking"
	"github.com/jonathan/candidate-screener/internal/schemas"
	"github.com/jonathan/candidate-screener/internal/types"
)

var (
	screenJob         string
	screenTitle       string
	screenCompany     string
	screenManifest    string
	screenOutput      string
	screenVocab       string
	screenMode        string
	screenConcurrency int
	screenDatabaseURL string
	screenUserID      string
)

var screenCmd = &cobra.Command{
	Use:   "screen [files...]",
	Short: "Screen résumé files against a job description",
	Long: `Extracts the required skills from a job description, screens every résumé
against them and prints the candidates ranked by match score.

Résumés are given as arguments, through a --manifest file, or both. With
--db-url and --user-id the job and the scored candidates are also stored.`,
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().StringVarP(&screenJob, "job", "j", "", "Path to the job description (required)")
	screenCmd.Flags().StringVar(&screenTitle, "title", "", "Job title (required)")
	screenCmd.Flags().StringVar(&screenCompany, "company", "", "Company name (required)")
	screenCmd.Flags().StringVarP(&screenManifest, "manifest", "m", "", "Path to a batch manifest JSON file")
	screenCmd.Flags().StringVarP(&screenOutput, "out", "o", "", "Write the full report as JSON to this path")
	screenCmd.Flags().StringVar(&screenVocab, "vocab", "", "Path to a vocabulary JSON file (default built-in)")
	screenCmd.Flags().StringVar(&screenMode, "mode", "", "Match mode: substring or word (default substring)")
	screenCmd.Flags().IntVar(&screenConcurrency, "concurrency", 0, "Documents screened at once (default 4)")
	screenCmd.Flags().StringVar(&screenDatabaseURL, "db-url", "", "Store results in this PostgreSQL database")
	screenCmd.Flags().StringVar(&screenUserID, "user-id", "", "Owner of the stored job (required with --db-url)")

	for _, name := range []string{"job", "title", "company"} {
		if err := screenCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(screenCmd)
}

// fileUpload is one résumé on disk with any contact details the manifest supplies.
type fileUpload struct {
	Path    string
	Contact types.Contact
}

type manifestFile struct {
	Documents []struct {
		File  string `json:"file"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"documents"`
}

// FailedFile reports a résumé that could not be read.
type FailedFile struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// ScreenReport is the JSON written by --out.
type ScreenReport struct {
	Job        *types.JobRequirement   `json:"job"`
	Candidates []types.CandidateRecord `json:"candidates"`
	Failed     []FailedFile            `json:"failed"`
	Succeeded  int                     `json:"succeeded"`
	Cancelled  int                     `json:"cancelled,omitempty"`
	Summary    ranking.Summary         `json:"summary"`
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(config.Config{
		VocabularyFile: screenVocab,
		MatchMode:      screenMode,
		Concurrency:    screenConcurrency,
		DatabaseURL:    screenDatabaseURL,
	})
	if err != nil {
		return err
	}
	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}

	uploads, err := collectUploads(screenManifest, args)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return fmt.Errorf("no résumé files given: pass files as arguments or use --manifest")
	}

	jobText, err := ingestion.ReadTextFile(screenJob)
	if err != nil {
		return err
	}
	req := &types.CreateJobRequest{Title: screenTitle, Company: screenCompany, Content: jobText}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	ctx := cmd.Context()
	var store resultStore
	userID := uuid.Nil
	if cfg.DatabaseURL != "" {
		if userID, err = uuid.Parse(screenUserID); err != nil {
			return fmt.Errorf("--user-id must be a valid UUID when storing results: %w", err)
		}
		conn, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		store = conn
	}

	job := types.NewJobRequirement(userID, req, extractor)
	docs := extractFiles(ctx, ingestion.NewFileExtractor(cfg.MaxUploadBytes), uploads, cfg.Concurrency)

	p := pipeline.New(extractor,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithLogger(cliLogger))
	report, err := screenAndReport(ctx, p, job, docs, store)
	if report == nil {
		return err
	}

	if screenOutput != "" {
		out, mErr := json.MarshalIndent(report, "", "  ")
		if mErr != nil {
			return fmt.Errorf("failed to marshal report: %w", mErr)
		}
		if wErr := writeOutput(screenOutput, out); wErr != nil {
			return wErr
		}
	}
	if pErr := printReport(os.Stdout, report); pErr != nil {
		return pErr
	}
	return err
}

// resultStore persists a finished batch. *db.DB implements it.
type resultStore interface {
	CreateJobWithCandidates(ctx context.Context, job *types.JobRequirement, records []types.CandidateRecord) ([]types.CandidateRecord, error)
}

// screenAndReport screens docs against job and builds the report. With a
// store, the job and its scored candidates are saved together once the whole
// batch has been screened.
//
// A cancelled batch still returns a report of the documents that finished,
// marked Cancelled, together with the error. Nothing is stored for it.
func screenAndReport(ctx context.Context, p *pipeline.Pipeline, job *types.JobRequirement, docs []types.CandidateDocument, store resultStore) (*ScreenReport, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	result, err := p.Run(ctx, job, docs, func(ev pipeline.ProgressEvent) {
		cliLogger.Debug("screened document",
			zap.String("file", ev.FileName),
			zap.String("outcome", ev.Outcome),
			zap.Int("completed", ev.Completed),
			zap.Int("total", ev.Total))
	})
	if err != nil {
		if result == nil {
			return nil, fmt.Errorf("screening failed: %w", err)
		}
		report := buildReport(job, result)
		report.Cancelled = result.Cancelled
		return report, fmt.Errorf("screening cancelled after %d of %d documents: %w",
			len(result.Records), len(docs), err)
	}

	report := buildReport(job, result)
	if store == nil {
		return report, nil
	}

	stored, err := store.CreateJobWithCandidates(ctx, job, report.Candidates)
	if err != nil {
		return nil, err
	}
	report.Candidates = ranking.Rank(stored)
	return report, nil
}

// collectUploads merges the manifest entries with the files given as arguments.
func collectUploads(manifestPath string, args []string) ([]fileUpload, error) {
	var uploads []fileUpload
	if manifestPath != "" {
		fromManifest, err := loadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, fromManifest...)
	}
	for _, arg := range args {
		uploads = append(uploads, fileUpload{Path: arg})
	}
	return uploads, nil
}

// loadManifest reads a batch manifest. Relative file paths are resolved
// against the manifest's directory.
func loadManifest(path string) ([]fileUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.BatchManifest, data); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	var m manifestFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	uploads := make([]fileUpload, 0, len(m.Documents))
	for _, d := range m.Documents {
		file := d.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		uploads = append(uploads, fileUpload{
			Path:    file,
			Contact: types.Contact{Name: d.Name, Email: d.Email, Phone: d.Phone},
		})
	}
	return uploads, nil
}

// extractFiles reads every upload into a CandidateDocument. Unreadable files
// become documents with ExtractionErr set so they are reported, not fatal.
func extractFiles(ctx context.Context, ex ingestion.Extractor, uploads []fileUpload, concurrency int) []types.CandidateDocument {
	docs := make([]types.CandidateDocument, len(uploads))
	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))
	for i, up := range uploads {
		g.Go(func() error {
			docs[i] = extractFile(ctx, ex, up)
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

func extractFile(ctx context.Context, ex ingestion.Extractor, up fileUpload) types.CandidateDocument {
	name := filepath.Base(up.Path)
	f, err := os.Open(up.Path)
	if err != nil {
		contact := up.Contact
		if contact.Name == "" {
			contact.Name = ingestion.NameFromFileName(name)
		}
		return types.CandidateDocument{
			SourceFileName: name,
			ExtractionErr:  &ingestion.ExtractionError{FileName: name, Message: "failed to open file", Cause: err},
			Contact:        contact,
		}
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return ingestion.BuildDocument(ctx, ex, ingestion.Upload{
		FileName: name,
		Size:     size,
		Body:     f,
		Contact:  up.Contact,
	})
}

// buildReport ranks the scored records of result and lists the failed ones.
func buildReport(job *types.JobRequirement, result *pipeline.Result) *ScreenReport {
	report := &ScreenReport{
		Job:       job,
		Failed:    []FailedFile{},
		Succeeded: result.Succeeded,
	}
	scored := make([]types.CandidateRecord, 0, result.Succeeded)
	for _, rec := range result.Records {
		if rec.ExtractionFailed {
			report.Failed = append(report.Failed, FailedFile{FileName: rec.FileName, Reason: rec.FailureReason})
			continue
		}
		scored = append(scored, rec)
	}
	report.Candidates = ranking.Rank(scored)
	report.Summary = ranking.Summarize(report.Candidates)
	return report
}

// printReport writes the ranking as an aligned table followed by the counts.
func printReport(w io.Writer, report *ScreenReport) error {
	job := report.Job
	fmt.Fprintf(w, "Job: %s at %s\n", job.Title, job.Company)
	fmt.Fprintf(w, "Required skills: %s\n\n", joinOrDash(job.RequiredSkills))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tNAME\tEMAIL\tMATCHED\tMISSING")
	for i, c := range report.Candidates {
		score, _ := c.Score()
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			i+1, score, c.Name, orDash(c.Email), joinOrDash(c.MatchedSkills), joinOrDash(c.MissingSkills))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSucceeded: %d  Failed: %d\n", report.Succeeded, len(report.Failed))
	if report.Cancelled > 0 {
		fmt.Fprintf(w, "Cancelled: %d documents not screened, results are partial\n", report.Cancelled)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "  %s: %s\n", f.FileName, f.Reason)
	}
	return nil
}

func joinOrDash(values []string) string {
	return orDash(strings.Join(values, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
