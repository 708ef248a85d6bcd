// Package generator drives one test-script generation end to end as a fixed
// sequence of stages. Each stage either advances the state or fails the
// whole generation with a stage-qualified error; there are no retries.
package generator

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/logger"
	"github.com/scriptgen-ra/scriptgen/common/random"
	"github.com/scriptgen-ra/scriptgen/extractor"
	"github.com/scriptgen-ra/scriptgen/monitor"
	"github.com/scriptgen-ra/scriptgen/prompt"
	"github.com/scriptgen-ra/scriptgen/relay"
	"github.com/scriptgen-ra/scriptgen/storage"
)

// Stage names one step of the generation pipeline. Stages appear in error
// messages and metrics labels.
type Stage string

const (
	StageValidatingRequest  Stage = "ValidatingRequest"
	StageReadingTemplates   Stage = "ReadingTemplates"
	StageExtractingData     Stage = "ExtractingData"
	StageAssemblingPrompt   Stage = "AssemblingPrompt"
	StageInvokingCompletion Stage = "InvokingCompletion"
	StageSplittingResponse  Stage = "SplittingResponse"
	StagePersistingFiles    Stage = "PersistingFiles"
)

// StageError wraps a failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + " failed: " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// ValidationError marks a failure the caller can correct by fixing the
// request. The API layer maps it to a 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

const (
	SourceExcel    = "excel"
	SourceTestRail = "testrail"
)

// Request is one generation request after transport decoding. Files maps
// the logical field names (methodFile, testFile, excelFile) to stored
// upload names.
type Request struct {
	DataSource      string
	UseDefaultFiles bool
	Files           map[string]string
	TestRail        *extractor.TestRailConfig
}

// Result carries everything a successful generation produced.
type Result struct {
	GenerationID  string
	APIDetails    extractor.APIDetails
	Scenarios     []extractor.Scenario
	MethodFile    string
	TestFile      string
	Saved         *storage.SavedFiles
	SplitStrategy relay.SplitStrategy
	PromptTokens  int
	Usage         *relay.Usage
}

// Invoker abstracts the completion backend so tests can substitute fakes.
type Invoker interface {
	Invoke(ctx context.Context, messages []prompt.Message) (string, *relay.Usage, error)
}

// CaseFetcher abstracts the TestRail case fetch for the same reason.
type CaseFetcher func(ctx context.Context, cfg *extractor.TestRailConfig) (*extractor.CaseData, error)

// Orchestrator owns the pipeline wiring. All collaborators are injected at
// construction; Generate itself holds no mutable state and is safe for
// concurrent use.
type Orchestrator struct {
	cfg     *config.Config
	store   *storage.Store
	invoker Invoker
	fetch   CaseFetcher
}

func New(cfg *config.Config, store *storage.Store, invoker Invoker) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		invoker: invoker,
		fetch:   extractor.FetchCase,
	}
}

// WithCaseFetcher overrides the TestRail fetch, for tests.
func (o *Orchestrator) WithCaseFetcher(f CaseFetcher) *Orchestrator {
	o.fetch = f
	return o
}

// NewGenerationID returns a sortable UTC timestamp token with a short
// uuid-derived suffix so concurrent generations never collide.
func NewGenerationID() string {
	ts := strings.NewReplacer(":", "-", ".", "-").
		Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return ts + "-" + random.GetUUID()[:6]
}

// Generate runs the full pipeline for one request. On failure the returned
// error is always a *StageError naming the stage that failed.
func (o *Orchestrator) Generate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	res, err := o.generate(ctx, req)

	outcome := "success"
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			outcome = string(se.Stage)
		} else {
			outcome = "unknown"
		}
	}
	monitor.ObserveGeneration(req.DataSource, outcome, time.Since(start))
	return res, err
}

func (o *Orchestrator) generate(ctx context.Context, req *Request) (*Result, error) {
	lg := logger.Logger.With(zap.String("data_source", req.DataSource))

	if err := o.validate(req); err != nil {
		return nil, stageErr(StageValidatingRequest, err)
	}

	methodTemplate, testTemplate, err := o.readTemplates(req)
	if err != nil {
		return nil, stageErr(StageReadingTemplates, err)
	}
	lg.Info("templates read",
		zap.Int("method_len", len(methodTemplate)),
		zap.Int("test_len", len(testTemplate)))

	extracted, err := o.extract(ctx, req)
	if err != nil {
		return nil, stageErr(StageExtractingData, err)
	}
	lg.Info("data extracted", zap.Int("scenarios", len(extracted.Scenarios)))

	messages := prompt.Assemble(extracted.APIDetails, extracted.Scenarios,
		methodTemplate, testTemplate)
	promptTokens := prompt.EstimateTokens(messages)
	monitor.ObservePromptTokens(promptTokens)
	lg.Info("prompt assembled",
		zap.Int("messages", len(messages)),
		zap.Int("token_estimate", promptTokens))

	raw, usage, err := o.invoker.Invoke(ctx, messages)
	if err != nil {
		return nil, stageErr(StageInvokingCompletion, err)
	}

	split, err := relay.Split(raw)
	if err != nil {
		return nil, stageErr(StageSplittingResponse, err)
	}
	lg.Info("completion split", zap.String("strategy", string(split.Strategy)))

	generationID := NewGenerationID()
	saved, err := o.store.SaveArtifacts(generationID, split.MethodFile, split.TestFile)
	if err != nil {
		return nil, stageErr(StagePersistingFiles, err)
	}

	return &Result{
		GenerationID:  generationID,
		APIDetails:    extracted.APIDetails,
		Scenarios:     extracted.Scenarios,
		MethodFile:    split.MethodFile,
		TestFile:      split.TestFile,
		Saved:         saved,
		SplitStrategy: split.Strategy,
		PromptTokens:  promptTokens,
		Usage:         usage,
	}, nil
}

func (o *Orchestrator) validate(req *Request) error {
	if req.DataSource != SourceExcel && req.DataSource != SourceTestRail {
		return &ValidationError{Reason: `invalid data source, must be either "excel" or "testrail"`}
	}
	if !req.UseDefaultFiles {
		if req.Files["methodFile"] == "" || req.Files["testFile"] == "" {
			return &ValidationError{Reason: "method file and test file are required when not using default files"}
		}
		if req.DataSource == SourceExcel && req.Files["excelFile"] == "" {
			return &ValidationError{Reason: "excel file is required when using the excel data source"}
		}
	} else if !o.cfg.UseDefaultsSupported(req.DataSource == SourceExcel) {
		return &ValidationError{Reason: "default files are not configured on the server"}
	}
	if req.DataSource == SourceTestRail {
		tr := req.TestRail
		if tr == nil || tr.Username == "" || tr.APIKey == "" || tr.TestCaseID == "" {
			return &ValidationError{Reason: "TestRail configuration (username, apikey, testCaseId) is required when using the testrail data source"}
		}
	}
	return nil
}

func (o *Orchestrator) readTemplates(req *Request) (string, string, error) {
	var methodPath, testPath string
	if req.UseDefaultFiles {
		methodPath = o.cfg.DefaultMethodPath
		testPath = o.cfg.DefaultTestPath
	} else {
		var err error
		if methodPath, err = o.store.UploadPath(req.Files["methodFile"]); err != nil {
			return "", "", err
		}
		if testPath, err = o.store.UploadPath(req.Files["testFile"]); err != nil {
			return "", "", err
		}
	}

	for _, p := range []string{methodPath, testPath} {
		if _, err := os.Stat(p); err != nil {
			return "", "", errors.Wrapf(err, "template file not found: %s", p)
		}
	}
	methodTemplate, err := storage.ReadTemplate(methodPath)
	if err != nil {
		return "", "", err
	}
	testTemplate, err := storage.ReadTemplate(testPath)
	if err != nil {
		return "", "", err
	}
	return methodTemplate, testTemplate, nil
}

func (o *Orchestrator) extract(ctx context.Context, req *Request) (*extractor.Result, error) {
	switch req.DataSource {
	case SourceExcel:
		var excelPath string
		if req.UseDefaultFiles {
			excelPath = o.cfg.DefaultExcelPath
		} else {
			var err error
			if excelPath, err = o.store.UploadPath(req.Files["excelFile"]); err != nil {
				return nil, err
			}
		}
		if _, err := os.Stat(excelPath); err != nil {
			return nil, errors.Wrapf(err, "excel file not found: %s", excelPath)
		}
		return extractor.ExtractSpreadsheet(excelPath)

	case SourceTestRail:
		tr := *req.TestRail
		if tr.BaseURL == "" {
			tr.BaseURL = o.cfg.TestRailBaseURL
			logger.Logger.Info("using configured TestRail base URL",
				zap.String("base_url", tr.BaseURL))
		}
		data, err := o.fetch(ctx, &tr)
		if err != nil {
			return nil, err
		}
		return extractor.DecodeCase(data), nil

	default:
		return nil, errors.Errorf("unsupported data source %q", req.DataSource)
	}
}
