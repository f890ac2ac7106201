package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/codedrills/internal/store"
)

// RecordingProvider stores every request and its outcome as an LLM
// request event. Store failures are logged and never fail the request.
type RecordingProvider struct {
	inner  Provider
	repo   store.EventRepo
	logger *slog.Logger
	now    func() time.Time
}

// WithRecording wraps p. A nil logger discards.
func WithRecording(p Provider, repo store.EventRepo, logger *slog.Logger) *RecordingProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RecordingProvider{inner: p, repo: repo, logger: logger, now: time.Now}
}

func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *RecordingProvider) ProviderName() string { return providerName(r.inner) }

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    providerName(r.inner),
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   r.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text()
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// Record even when ctx was cancelled so failures still show up.
	if rerr := r.repo.AppendLLMRequest(context.WithoutCancel(ctx), ev); rerr != nil {
		r.logger.Warn("failed to record LLM request", "purpose", ev.Purpose, "error", rerr)
	}
	return resp, err
}

// transcript renders a request the way `codedrills llm view` shows it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
