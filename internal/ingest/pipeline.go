package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"tagwater/internal/catalog"
	"tagwater/internal/logging"
	"tagwater/internal/script"
)

// Vault is the content side of a run.
type Vault interface {
	script.FileChecker
	script.ContentStore
	Lock(ctx context.Context) error
	Unlock() error
}

// Result is the operator-facing outcome of a run. UnknownTags repeats the
// unknown names of a failed validation for callers that want to suggest
// alternatives.
type Result struct {
	RunID       string
	OK          bool
	Messages    []string
	UnknownTags []string
	Commit      *script.CommitResult
}

// Pipeline wires the script stages to their collaborators.
type Pipeline struct {
	Catalog *catalog.Store
	Vault   Vault
	Logger  *slog.Logger
}

// New constructs a pipeline logging under the "ingest" component.
func New(store *catalog.Store, v Vault, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Catalog: store,
		Vault:   v,
		Logger:  logging.NewComponentLogger(logger, "ingest"),
	}
}

// Run executes the script at scriptPath, resolved against workDir, and
// commits it when it validates.
func (p *Pipeline) Run(ctx context.Context, workDir, scriptPath string) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := p.runLogger(ctx, scriptPath)
	started := time.Now()

	if err := p.Vault.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := p.Vault.Unlock(); err != nil {
			logger.Warn("release vault lock", logging.Error(err))
		}
	}()

	logger.Info("script run started", logging.String("workdir", workDir))

	doc, failure, err := p.prepare(ctx, workDir, scriptPath)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		failure.RunID = runID
		logger.Info("script rejected", logging.Int("messages", len(failure.Messages)))
		return failure, nil
	}

	tagIDs, err := p.Catalog.TagIDs(ctx, doc.Tags.Sorted())
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	var commit *script.CommitResult
	err = p.Catalog.Batch(ctx, func(b *catalog.Batch) error {
		committer := script.Committer{
			Catalog: b,
			Content: p.Vault,
			WorkDir: workDir,
			Logger:  logger,
		}
		var commitErr error
		commit, commitErr = committer.Commit(ctx, doc, tagIDs)
		return commitErr
	})
	if err != nil {
		files := 0
		if commit != nil {
			files = len(commit.Files)
		}
		logger.Error("commit aborted", logging.Int("files_committed", files), logging.Error(err))
		return nil, fmt.Errorf("commit: %w", err)
	}

	// A failed run reports its group errors; copy failures then stay in
	// Commit.FailedCopies.
	result := &Result{RunID: runID, OK: true, Commit: commit}
	for _, groupErr := range commit.GroupErrors() {
		result.OK = false
		result.Messages = append(result.Messages, groupErr.Error())
	}
	if result.OK {
		result.Messages = commit.Log()
	}

	logger.Info("script run finished",
		logging.Bool("ok", result.OK),
		logging.Int("files", len(commit.Files)),
		logging.Int("groups", len(commit.Groups)),
		logging.Int("copy_failures", len(commit.FailedCopies)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// Check lexes, parses and validates the script without touching the catalog
// or the vault. A nil document comes with a failure Result.
func (p *Pipeline) Check(ctx context.Context, workDir, scriptPath string) (*script.Document, *Result, error) {
	doc, failure, err := p.prepare(ctx, workDir, scriptPath)
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return doc, &Result{OK: true}, nil
}

func (p *Pipeline) prepare(ctx context.Context, workDir, scriptPath string) (*script.Document, *Result, error) {
	src, err := os.ReadFile(script.SourcePath(workDir, scriptPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, failed(fmt.Sprintf("File \"%s\" not found", scriptPath)), nil
		}
		return nil, failed(fmt.Sprintf("Could not read script '%s': %v", scriptPath, err)), nil
	}

	tokens, err := script.Lex(src)
	if err != nil {
		return nil, failed(err.Error()), nil
	}
	doc, err := script.Parse(tokens)
	if err != nil {
		return nil, failed(err.Error()), nil
	}

	err = script.Validate(ctx, doc, workDir, p.Catalog, p.Vault)
	var validationErr *script.ValidationError
	switch {
	case errors.As(err, &validationErr):
		res := failed(validationErr.Lines()...)
		res.UnknownTags = validationErr.UnknownTags
		return nil, res, nil
	case err != nil:
		return nil, nil, err
	}
	return doc, nil, nil
}

func (p *Pipeline) runLogger(ctx context.Context, scriptPath string) *slog.Logger {
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return logging.WithContext(ctx, logger).With(logging.String(logging.FieldScript, scriptPath))
}

func failed(messages ...string) *Result {
	return &Result{Messages: messages}
}
