package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eassistant/internal/ingest"
	"eassistant/internal/llm"
	"eassistant/internal/storage"
	"eassistant/internal/types"
)

// ErrModelUnavailable reports that no language model could be reached.
// Operations that need one fail with it; the conversation recovers and
// mechanical operations like saving keep working.
var ErrModelUnavailable = errors.New("language model unavailable")

// Operations executes the intents that do real work.
type Operations interface {
	// LoadEmail resolves raw text or a file path into email text and
	// extracts its key info in the same step.
	LoadEmail(ctx context.Context, pathOrText string) (string, *types.ExtractedInfo, error)
	ExtractInfo(ctx context.Context, email string) (*types.ExtractedInfo, error)
	DraftReply(ctx context.Context, email, tone string) (string, error)
	RefineDraft(ctx context.Context, lastDraft, instructions, summary string) (string, error)
	// SaveDraft writes the draft locally or to S3 and returns where it
	// landed.
	SaveDraft(ctx context.Context, draft, path string, cloud bool) (string, error)
}

// LLMOperations is the production Operations implementation: model
// calls through the processor, file ingestion for loads, local or S3
// persistence for saves.
type LLMOperations struct {
	proc      *llm.Processor
	bucket    string
	draftsDir string
	uploader  *storage.Uploader
}

// NewLLMOperations builds the production operations. A nil processor
// is allowed; model-backed operations then fail with
// ErrModelUnavailable while loading files and saving drafts still
// work.
func NewLLMOperations(proc *llm.Processor, bucket, draftsDir string) *LLMOperations {
	return &LLMOperations{proc: proc, bucket: bucket, draftsDir: draftsDir}
}

func (o *LLMOperations) LoadEmail(ctx context.Context, pathOrText string) (string, *types.ExtractedInfo, error) {
	text, err := ingest.Resolve(pathOrText)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, fmt.Errorf("email content is empty")
	}
	if o.proc == nil {
		return "", nil, ErrModelUnavailable
	}
	info, err := o.proc.ExtractInfo(ctx, text)
	if err != nil {
		return "", nil, err
	}
	return text, info, nil
}

func (o *LLMOperations) ExtractInfo(ctx context.Context, email string) (*types.ExtractedInfo, error) {
	if o.proc == nil {
		return nil, ErrModelUnavailable
	}
	return o.proc.ExtractInfo(ctx, email)
}

func (o *LLMOperations) DraftReply(ctx context.Context, email, tone string) (string, error) {
	if o.proc == nil {
		return "", ErrModelUnavailable
	}
	return o.proc.DraftReply(ctx, email, tone)
}

func (o *LLMOperations) RefineDraft(ctx context.Context, lastDraft, instructions, summary string) (string, error) {
	if o.proc == nil {
		return "", ErrModelUnavailable
	}
	return o.proc.RefineDraft(ctx, lastDraft, instructions, summary)
}

func (o *LLMOperations) SaveDraft(ctx context.Context, draft, path string, cloud bool) (string, error) {
	if !cloud {
		return storage.SaveLocal(draft, path, o.draftsDir)
	}
	if o.uploader == nil {
		u, err := storage.NewUploader(ctx, o.bucket)
		if err != nil {
			return "", err
		}
		o.uploader = u
	}
	return o.uploader.Upload(ctx, draft, path)
}
