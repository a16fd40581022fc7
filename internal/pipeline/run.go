// Package pipeline screens a batch of candidate documents against one job.
//
// The pipeline is computation only: it never touches the database or the
// filesystem. Text extraction happens before Run (see package ingestion) and
// persistence after it (see package db).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-screener/internal/logger"
	"github.com/jonathan/candidate-screener/internal/ranking"
	"github.com/jonathan/candidate-screener/internal/skills"
	"github.com/jonathan/candidate-screener/internal/types"
)

// DefaultConcurrency bounds the number of documents screened at once.
const DefaultConcurrency = 4

// logTextLimit bounds the résumé text included in debug logs.
const logTextLimit = 200

// Outcome of screening one document.
const (
	OutcomeScored           = "scored"
	OutcomeExtractionFailed = "extraction_failed"
)

// ErrVocabularyMismatch is returned when the job's required skills were not
// produced by the extractor's vocabulary.
var ErrVocabularyMismatch = errors.New("job required skills are not in the screening vocabulary")

// ProgressEvent is emitted once per finished document.
type ProgressEvent struct {
	Index     int                    `json:"index"`
	FileName  string                 `json:"file_name"`
	Outcome   string                 `json:"outcome"`
	Completed int                    `json:"completed"`
	Total     int                    `json:"total"`
	Record    *types.CandidateRecord `json:"record,omitempty"`
}

// ProgressCallback is called when a document finishes. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Recorder receives screening measurements.
type Recorder interface {
	ObserveDocument(outcome string, score int)
	ObserveBatch(documents int, elapsed time.Duration)
}

// Result holds the records of one batch.
type Result struct {
	// Records are in input order. After cancellation only the documents that
	// finished are present; Indices maps each record back to its input position.
	Records []types.CandidateRecord
	Indices []int

	Succeeded int
	Failed    int
	// Cancelled counts documents that were never screened.
	Cancelled int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency sets the worker limit. Values below 1 select DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = DefaultConcurrency
		}
		p.concurrency = n
	}
}

// WithLogger sets the logger used for batch summaries.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder sets a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline screens documents with a fixed extractor. It holds no state
// between runs and may be shared by concurrent callers.
type Pipeline struct {
	extractor   *skills.Extractor
	concurrency int
	logger      *zap.Logger
	recorder    Recorder
}

// New creates a Pipeline. The extractor must use the vocabulary the job's
// required skills were derived with.
func New(extractor *skills.Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   extractor,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run screens docs against job, producing one record per document in input order.
//
// A document whose ExtractionErr is set yields a record marked ExtractionFailed
// with no score; it never aborts the batch. If ctx is cancelled, Run stops
// scheduling documents and returns the records finished so far together with
// ctx.Err().
func (p *Pipeline) Run(ctx context.Context, job *types.JobRequirement, docs []types.CandidateDocument, onProgress ProgressCallback) (*Result, error) {
	if job == nil {
		return nil, fmt.Errorf("job requirement is required")
	}
	if p.extractor == nil || p.extractor.Vocabulary() == nil {
		return nil, fmt.Errorf("skill extractor with a vocabulary is required")
	}
	required := job.RequiredSet()
	if err := p.checkVocabulary(required); err != nil {
		return nil, err
	}

	start := time.Now()
	records := make([]types.CandidateRecord, len(docs))
	done := make([]bool, len(docs))

	var mu sync.Mutex
	completed := 0
	report := func(i int) {
		if onProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		completed++
		rec := records[i]
		onProgress(ProgressEvent{
			Index:     i,
			FileName:  rec.FileName,
			Outcome:   outcomeOf(&rec),
			Completed: completed,
			Total:     len(docs),
			Record:    &rec,
		})
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)

schedule:
	for i := range docs {
		select {
		case <-ctx.Done():
			break schedule
		default:
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			records[i] = p.screen(job, required, &docs[i])
			done[i] = true
			p.observe(&records[i])
			report(i)
			return nil
		})
	}
	_ = g.Wait()

	result := collect(records, done)
	elapsed := time.Since(start)
	if p.recorder != nil {
		p.recorder.ObserveBatch(len(docs), elapsed)
	}

	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.Int("documents", len(docs)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", elapsed),
	}

	if err := ctx.Err(); err != nil {
		p.logger.Warn("screening batch cancelled", append(fields, zap.Int("cancelled", result.Cancelled))...)
		return result, err
	}
	p.logger.Info("screening batch finished", fields...)
	return result, nil
}

// screen builds the record for one document.
func (p *Pipeline) screen(job *types.JobRequirement, required skills.Set, doc *types.CandidateDocument) types.CandidateRecord {
	rec := types.CandidateRecord{
		JobRequirementID: job.ID,
		UserID:           job.UserID,
		Name:             doc.Contact.Name,
		Email:            doc.Contact.Email,
		Phone:            doc.Contact.Phone,
		Experience:       doc.Contact.Experience,
		FileName:         doc.SourceFileName,
		FileSize:         doc.SourceFileSizeBytes,
		Status:           types.StatusPending,
		MatchedSkills:    []string{},
		MissingSkills:    []string{},
	}

	if doc.ExtractionErr != nil {
		rec.ExtractionFailed = true
		rec.FailureReason = doc.ExtractionErr.Error()
		p.logger.Debug("document extraction failed",
			zap.String("file", doc.SourceFileName),
			zap.Error(doc.ExtractionErr))
		return rec
	}

	found := p.extractor.Extract(doc.ExtractedText)
	scored := ranking.Score(required, found)

	rec.MatchScore = types.IntPtr(scored.Score)
	rec.MatchedSkills = scored.Matched.Sorted()
	rec.MissingSkills = scored.Missing.Sorted()
	rec.Summary = BuildSummary(job.Title, rec.MatchedSkills)
	p.logger.Debug("document screened",
		zap.String("file", doc.SourceFileName),
		zap.Int("score", scored.Score),
		zap.String("text", logger.TruncateForLog(doc.ExtractedText, logTextLimit)))
	return rec
}

func (p *Pipeline) checkVocabulary(required skills.Set) error {
	vocab := p.extractor.Vocabulary()
	var unknown []string
	for _, name := range required.Sorted() {
		if !vocab.Contains(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrVocabularyMismatch, strings.Join(unknown, ", "))
	}
	return nil
}

func (p *Pipeline) observe(rec *types.CandidateRecord) {
	if p.recorder == nil {
		return
	}
	score, _ := rec.Score()
	p.recorder.ObserveDocument(outcomeOf(rec), score)
}

func outcomeOf(rec *types.CandidateRecord) string {
	if rec.ExtractionFailed {
		return OutcomeExtractionFailed
	}
	return OutcomeScored
}

func collect(records []types.CandidateRecord, done []bool) *Result {
	result := &Result{
		Records: make([]types.CandidateRecord, 0, len(records)),
		Indices: make([]int, 0, len(records)),
	}
	for i := range records {
		if !done[i] {
			result.Cancelled++
			continue
		}
		result.Records = append(result.Records, records[i])
		result.Indices = append(result.Indices, i)
		if records[i].ExtractionFailed {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result
}
