// Package pipeline runs one content generation request from a decoded body to
// a closed Outcome.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"content-creator/internal/backends/generation"
	"content-creator/internal/backends/retrieval"
	"content-creator/internal/common/errors"
	"content-creator/internal/common/logger"
	"content-creator/internal/common/metrics"
	"content-creator/internal/common/observability"
	"content-creator/internal/common/validation"
	"content-creator/internal/content/interpreter"
	"content-creator/internal/content/prompt"
	"content-creator/internal/content/render"
	"content-creator/internal/models"
)

// ValidationMessage is the only message a Validation outcome carries.
const ValidationMessage = "Title and description are required"

type Kind int

const (
	KindSuccess Kind = iota
	KindValidation
	KindBackendFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return metrics.OutcomeSuccess
	case KindValidation:
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeBackendFailure
	}
}

// Outcome is the result of one request. Content is set only on success and
// Err only otherwise.
type Outcome struct {
	Kind     Kind
	Request  models.GenerationRequest
	Content  models.RenderedContent
	Fallback bool
	Err      *errors.StandardError
}

// Detail is the verbatim failure message reported to callers.
func (o Outcome) Detail() string {
	if o.Err == nil {
		return ""
	}
	if o.Err.Details != "" {
		return o.Err.Details
	}
	return o.Err.Message
}

// HistoryRecorder persists successful generations.
type HistoryRecorder interface {
	Save(ctx context.Context, rec models.HistoryRecord) error
}

// EventPublisher announces successful generations.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.ContentGeneratedEvent) error
}

type Pipeline struct {
	retriever retrieval.Retriever
	backend   generation.Backend
	renderer  render.Renderer
	topK      int
	history   HistoryRecorder
	events    EventPublisher
	obs       *observability.Observability
	logger    logger.Logger
}

type Option func(*Pipeline)

func WithRenderer(r render.Renderer) Option { return func(p *Pipeline) { p.renderer = r } }

func WithHistory(h HistoryRecorder) Option { return func(p *Pipeline) { p.history = h } }

func WithEvents(e EventPublisher) Option { return func(p *Pipeline) { p.events = e } }

func WithObservability(o *observability.Observability) Option {
	return func(p *Pipeline) { p.obs = o }
}

func WithLogger(l logger.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithTopK overrides retrieval.DefaultTopK. Values below one are ignored.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// New builds a pipeline around the collaborators chosen at process start.
func New(r retrieval.Retriever, b generation.Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		retriever: r,
		backend:   b,
		topK:      retrieval.DefaultTopK,
		logger:    logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithFields(map[string]interface{}{"component": "pipeline"})
	return p
}

// DecodeBody parses a raw request body. Anything other than a JSON object is
// an internal error rather than a validation failure.
func DecodeBody(body []byte) (map[string]interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.NewInternalError(err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.NewInternalError(fmt.Errorf("request body must be a JSON object, got %s", jsonKind(doc)))
	}
	return obj, nil
}

// ParseRequest validates doc and builds a defaulted GenerationRequest.
func ParseRequest(doc map[string]interface{}) (models.GenerationRequest, error) {
	res, err := validation.ValidateGenerationRequest(doc)
	if err != nil {
		return models.GenerationRequest{}, errors.NewInternalError(err)
	}
	if !res.Valid {
		stdErr := errors.NewValidationError(ValidationMessage)
		fields := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			fields = append(fields, e.Field+": "+e.Message)
		}
		return models.GenerationRequest{}, stdErr.WithMetadata("violations", fields)
	}

	req := models.GenerationRequest{
		Title:       doc["title"].(string),
		Description: doc["description"].(string),
		Tone:        optionalString(doc["tone"]),
		Language:    optionalString(doc["language"]),
		ContentType: optionalString(doc["content_type"]),
	}
	return req.WithDefaults(), nil
}

// Handle decodes body and runs it.
func (p *Pipeline) Handle(ctx context.Context, body []byte) Outcome {
	doc, err := DecodeBody(body)
	if err != nil {
		return p.finish(Outcome{Kind: KindBackendFailure, Err: errors.AsStandardError(err)})
	}
	return p.Run(ctx, doc)
}

// Run executes validate, retrieve, compose, generate, interpret, render and
// the non-critical side effects, in that order. It never panics.
func (p *Pipeline) Run(ctx context.Context, doc map[string]interface{}) (out Outcome) {
	ctx, span := p.obs.StartSpan(ctx, "pipeline.run")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Pipeline panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			out = p.finish(Outcome{Kind: KindBackendFailure, Err: errors.NewInternalError(fmt.Errorf("%v", r))})
		}
		span.SetAttributes(attribute.String("outcome", out.Kind.String()))
		if out.Err != nil {
			span.SetStatus(codes.Error, out.Detail())
		}
	}()

	req, err := ParseRequest(doc)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		kind := KindBackendFailure
		if stdErr.Code == errors.ErrCodeValidationFailed {
			kind = KindValidation
		}
		return p.finish(Outcome{Kind: kind, Err: stdErr})
	}

	content, fallback, stdErr := p.generate(ctx, req)
	if stdErr != nil {
		return p.finish(Outcome{Kind: KindBackendFailure, Request: req, Err: stdErr})
	}

	out = Outcome{Kind: KindSuccess, Request: req, Content: content, Fallback: fallback}
	p.record(ctx, out)
	return p.finish(out)
}

func (p *Pipeline) generate(ctx context.Context, req models.GenerationRequest) (models.RenderedContent, bool, *errors.StandardError) {
	retrieveCtx, span := p.obs.StartSpan(ctx, "pipeline.retrieve", attribute.String("retriever", p.retriever.Name()))
	snippets, err := p.retriever.Search(retrieveCtx, req.Description, p.topK)
	span.End()
	if err != nil {
		stdErr := errors.AsStandardError(err)
		if stdErr.Code == errors.ErrCodeInternal {
			stdErr = errors.NewRetrievalFailedError(err)
		}
		p.logger.Error("Context retrieval failed", map[string]interface{}{
			"retriever": p.retriever.Name(),
			"error":     stdErr.Details,
		})
		return models.RenderedContent{}, false, stdErr
	}

	composed := prompt.Compose(req, snippets)

	genCtx, span := p.obs.StartSpan(ctx, "pipeline.generate", attribute.String("backend", p.backend.Name()))
	start := time.Now()
	raw, err := p.backend.Generate(genCtx, composed)
	metrics.GenerationDuration.WithLabelValues(p.backend.Name()).Observe(time.Since(start).Seconds())
	span.End()
	if err != nil {
		p.logger.Error("Generation failed", map[string]interface{}{
			"backend": p.backend.Name(),
			"error":   err.Error(),
		})
		return models.RenderedContent{}, false, errors.NewGenerationFailedError(p.backend.Name(), err)
	}

	content, primary := interpreter.Interpret(raw, req.Title, req.Description)
	fallback := !primary
	if fallback {
		metrics.FallbackContent.Inc()
		p.logger.Warn("Backend output was not structured content, using fallback", map[string]interface{}{
			"backend": p.backend.Name(),
			"length":  len(raw),
		})
	}

	return p.renderer.Render(content, req.Title), fallback, nil
}

// record runs the side effects of a success. Their failures are logged only.
func (p *Pipeline) record(ctx context.Context, out Outcome) {
	if p.history == nil && p.events == nil {
		return
	}
	rec := models.NewHistoryRecord(out.Request, out.Content, out.Fallback)

	if p.history != nil {
		if err := p.history.Save(ctx, rec); err != nil {
			p.logger.Warn("Failed to record generation history", map[string]interface{}{
				"id":    rec.ID.String(),
				"error": err.Error(),
			})
		}
	}
	if p.events != nil {
		if err := p.events.Publish(ctx, models.EventFromRecord(rec)); err != nil {
			p.logger.Warn("Failed to publish generation event", map[string]interface{}{
				"id":    rec.ID.String(),
				"error": err.Error(),
			})
		}
	}
}

func (p *Pipeline) finish(out Outcome) Outcome {
	metrics.ContentRequests.WithLabelValues(out.Kind.String()).Inc()
	switch out.Kind {
	case KindSuccess:
		p.logger.Info("Content generated", map[string]interface{}{
			"title":       out.Request.Title,
			"contentType": out.Request.ContentType,
			"fallback":    out.Fallback,
		})
	case KindValidation:
		p.logger.Info("Rejected invalid request", map[string]interface{}{"violations": out.Err.Metadata["violations"]})
	}
	return out
}

// optionalString maps absent or null to empty and formats any other
// non-string value.
func optionalString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
