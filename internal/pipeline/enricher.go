// Package pipeline runs the extraction flows: enrichment facts and
// personalization, magic question/answer variables, and the unified
// orchestration of both over one shared search corpus.
package pipeline

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-enrich/internal/jsonx"
	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/internal/search"
	"github.com/sells-group/prospect-enrich/pkg/anthropic"
)

// Model invocation bounds per flow. Magic allows far more output tokens
// because variables scale with the number of questions asked.
const (
	enrichMaxTokens   = 1400
	enrichTemperature = 0.2
	magicMaxTokens    = 4000
	magicTemperature  = 0.1
)

// DefaultEnrichAsk guides enrichment when the caller supplied no ask.
const DefaultEnrichAsk = "Find a timely personalization angle and any hiring signals."

// defaultUnifiedAsk guides the enrichment half of the unified flow.
const defaultUnifiedAsk = "Find recent news, product launches, hiring signals, funding rounds, and partnership announcements for personalization angles."

// IntelligentSearcher is the slice of the search orchestrator the unified
// flow depends on.
type IntelligentSearcher interface {
	Intelligent(ctx context.Context, subject string, seedQueries []string) *search.IntelligentResult
}

// Enricher runs model extraction over page corpora.
type Enricher struct {
	AI       anthropic.Client
	Model    string
	Searcher IntelligentSearcher
}

// Enrich extracts facts, personalization angles, and target attributes for
// the subject from the given pages. Terminal failures are a transport error,
// an empty model response, or output no extraction strategy could parse.
func (e *Enricher) Enrich(ctx context.Context, subject, ask string, pages []model.Page) (*model.EnrichmentResponse, error) {
	raw, err := e.invoke(ctx, "enrich", enrichSystemPrompt,
		enrichUserPrompt(subject, ask, pages), enrichMaxTokens, enrichTemperature)
	if err != nil {
		return nil, err
	}

	resp, err := model.DecodeEnrichment(raw)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich")
	}
	return resp, nil
}

// Magic answers the given questions about the subject from the pages.
func (e *Enricher) Magic(ctx context.Context, subject string, questions []string, pages []model.Page) (*model.MagicVariablesResponse, error) {
	raw, err := e.invoke(ctx, "magic", magicSystemPrompt,
		magicUserPrompt(subject, questions, pages), magicMaxTokens, magicTemperature)
	if err != nil {
		return nil, err
	}

	resp, err := model.DecodeMagic(raw)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: magic")
	}
	return resp, nil
}

// invoke sends one extraction request and recovers a JSON value from the
// response text.
func (e *Enricher) invoke(ctx context.Context, phase, system, user string, maxTokens int64, temperature float64) (any, error) {
	resp, err := e.AI.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.Model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		System:      anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: %s message", phase)
	}
	resp.Usage.LogCost(e.Model, phase)

	text := responseText(resp)
	if text == "" {
		return nil, eris.Errorf("pipeline: %s: no text in model response", phase)
	}

	raw, err := jsonx.Extract(text)
	if err != nil {
		var malformed *jsonx.MalformedOutputError
		if errors.As(err, &malformed) {
			zap.L().Warn("pipeline: model output not parseable",
				zap.String("phase", phase),
				zap.String("excerpt", malformed.Excerpt()),
			)
		}
		return nil, err
	}
	return raw, nil
}

// responseText concatenates all text content blocks from a message response.
func responseText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

var (
	schemeRe = regexp.MustCompile(`(?i)^https?://`)
	tldRe    = regexp.MustCompile(`(?i)\.(com|org|net|io|co|ai|dev|app|tech|inc|llc|corp|company)$`)
)

// IsDomainLike reports whether the subject looks like a URL or bare domain
// rather than a free-form name. The classification only affects default
// subject-identifier synthesis, never control flow.
func IsDomainLike(subject string) bool {
	return schemeRe.MatchString(subject) || tldRe.MatchString(subject)
}

// DeriveDomain extracts the hostname from a domain or URL string, accepting
// bare domains by assuming https.
func DeriveDomain(domainOrURL string) (string, error) {
	s := domainOrURL
	if !schemeRe.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return "", eris.Errorf("pipeline: invalid domain or URL %q", domainOrURL)
	}
	return u.Hostname(), nil
}
