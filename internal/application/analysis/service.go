package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopdraw/drawcheck/internal/application"
	"github.com/shopdraw/drawcheck/internal/config"
	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/domain/document"
)

// State of a single analysis request. Terminal states are done and error;
// there is no automatic transition back to idle.
type State string

const (
	StateIdle        State = "idle"
	StateSizing      State = "sizing"
	StateCompressing State = "compressing"
	StateUploading   State = "uploading"
	StateRequesting  State = "requesting"
	StateParsing     State = "parsing"
	StateDone        State = "done"
	StateError       State = "error"
)

// Service implements the upload-then-analyze pipeline: size check →
// optional compression → optional blob staging → model call. Steps run
// strictly in sequence, one outstanding model call per run.
type Service struct {
	Analyzer   analysis.Analyzer
	Store      document.BlobStore
	Compressor document.Compressor
	Limits     config.Limits
	Clock      application.Clock
	OnProgress ProgressFunc

	mu    sync.Mutex
	state State
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State reports the state of the most recent run.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return StateIdle
	}
	return s.state
}

// Reset returns a settled service to idle. Rejected while a run is still
// in flight.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case "", StateIdle, StateDone, StateError:
		s.state = StateIdle
		return nil
	default:
		return fmt.Errorf("%w: analysis still in progress", analysis.ErrValidation)
	}
}

// Run executes one full analysis for an in-memory document.
func (s *Service) Run(ctx context.Context, doc document.Uploaded, pctx analysis.ProjectContext) (*analysis.Report, error) {
	started := s.Clock.Now()
	t := newTracker(s.OnProgress)
	defer t.Stop()

	fail := func(err error) (*analysis.Report, error) {
		s.setState(StateError)
		return nil, err
	}

	s.setState(StateSizing)
	t.Phase("Reading drawing", 15)
	if doc.Size == 0 || len(doc.Data) == 0 {
		return fail(fmt.Errorf("%w: empty file", analysis.ErrValidation))
	}

	data := doc.Data
	if int64(len(data)) > s.Limits.CompressThreshold {
		s.setState(StateCompressing)
		t.Phase("Compressing drawing", 35)
		out, err := s.Compressor.Compress(ctx, data)
		if err != nil {
			return fail(err)
		}
		// Adopt the compressed artifact only when it is actually smaller.
		if out.Smaller() {
			data = out.Data
		}
	}

	// Hard ceiling check happens before any network call.
	if int64(len(data)) > s.Limits.HardMax {
		return fail(fmt.Errorf("%w (%s, limit %s); compress the file externally and resubmit",
			analysis.ErrSizeLimit, document.FormatMB(int64(len(data))), document.FormatMB(s.Limits.HardMax)))
	}

	var (
		res *analysis.Result
		err error
	)
	if int64(len(data)) > s.Limits.InlineCeiling {
		s.setState(StateUploading)
		t.Phase("Staging upload", 55)
		obj, uerr := s.Store.Upload(ctx, data, doc.Filename)
		if uerr != nil {
			return fail(uerr)
		}
		s.setState(StateRequesting)
		t.Phase("Analyzing drawing", 90)
		res, err = s.Analyzer.AnalyzeURL(ctx, obj.URL, pctx)
	} else {
		s.setState(StateRequesting)
		t.Phase("Analyzing drawing", 90)
		res, err = s.Analyzer.AnalyzeBytes(ctx, data, doc.Filename, pctx)
	}
	if err != nil {
		return fail(err)
	}

	s.setState(StateParsing)
	t.Phase("Preparing results", 95)

	t.Done()
	s.setState(StateDone)
	return &analysis.Report{
		Filename:   doc.Filename,
		Result:     res,
		StartedAt:  started,
		DurationMS: s.Clock.Now().Sub(started).Milliseconds(),
	}, nil
}

// RunFromURL fetches a staged document server-side and runs the same
// pipeline on the bytes. Used by the blob-URL analyze variant.
func (s *Service) RunFromURL(ctx context.Context, blobURL, filename string, pctx analysis.ProjectContext) (*analysis.Report, error) {
	data, err := s.Store.Fetch(ctx, blobURL)
	if err != nil {
		s.setState(StateError)
		return nil, err
	}
	return s.Run(ctx, document.NewUploaded(data, filename), pctx)
}
