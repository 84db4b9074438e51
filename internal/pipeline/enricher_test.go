package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-enrich/internal/jsonx"
	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/pkg/anthropic"
)

type mockAI struct {
	mock.Mock
}

func (m *mockAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func testPages() []model.Page {
	return []model.Page{
		{URL: "https://openai.com/blog", Text: "OpenAI announced new enterprise features and is hiring across applied teams."},
		{URL: "https://techcrunch.com/openai", Text: "OpenAI raised a new funding round led by existing investors."},
	}
}

func TestEnrich_Success(t *testing.T) {
	t.Parallel()

	modelOutput := `{
		"subject_canonical": {"domain": "openai.com"},
		"facts": [
			{"name": "Recent Funding", "value": "New round led by existing investors", "source": {"url": "https://techcrunch.com/openai"}},
			{"name": "Hiring", "value": "Hiring across applied teams", "source": {"url": "https://openai.com/blog"}}
		],
		"personalization": [
			{"variant": "one_liner", "text": "Congrats on the new round."},
			{"variant": "short", "text": "Noticed the applied team hiring push, sounds like a scale-up phase."}
		],
		"target_attributes": {"funding_stage": "Growth"}
	}`

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.MaxTokens == int64(enrichMaxTokens) &&
			req.Temperature != nil && *req.Temperature == enrichTemperature
	})).Return(textResponse(modelOutput), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	resp, err := e.Enrich(context.Background(), "openai.com", "recent funding and hiring", testPages())
	require.NoError(t, err)

	require.NotNil(t, resp.SubjectCanonical)
	assert.Equal(t, "openai.com", resp.SubjectCanonical.Domain)

	// Every fact is sourced from the corpus.
	corpus := map[string]bool{}
	for _, p := range testPages() {
		corpus[p.URL] = true
	}
	require.Len(t, resp.Facts, 2)
	for _, f := range resp.Facts {
		require.NotNil(t, f.Source)
		assert.True(t, corpus[f.Source.URL], "fact sourced outside corpus: %s", f.Source.URL)
	}

	// At least two distinct personalization variants.
	variants := map[model.PersonalizationVariant]bool{}
	for _, p := range resp.Personalization {
		variants[p.Variant] = true
	}
	assert.GreaterOrEqual(t, len(variants), 2)

	ai.AssertExpectations(t)
}

func TestEnrich_PromptCarriesSubjectAskAndPages(t *testing.T) {
	t.Parallel()

	var captured anthropic.MessageRequest
	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(textResponse(`{"facts": [], "personalization": []}`), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	_, err := e.Enrich(context.Background(), "openai.com", "podcast appearances", testPages())
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	user := captured.Messages[0].Content
	assert.Contains(t, user, "Domain: openai.com")
	assert.Contains(t, user, "User Ask: podcast appearances")
	assert.Contains(t, user, "https://openai.com/blog")

	// System prompt is cached with a 1h TTL.
	require.NotEmpty(t, captured.System)
	last := captured.System[len(captured.System)-1]
	require.NotNil(t, last.CacheControl)
	assert.Equal(t, "1h", last.CacheControl.TTL)
}

func TestEnrich_WrappedJSONRecovered(t *testing.T) {
	t.Parallel()

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("Here is the enrichment data:\n```json\n{\"facts\": [{\"name\": \"F\", \"value\": \"v\"}], \"personalization\": []}\n```"), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	resp, err := e.Enrich(context.Background(), "acme.com", "ask", testPages())
	require.NoError(t, err)
	require.Len(t, resp.Facts, 1)
}

func TestEnrich_MalformedOutput(t *testing.T) {
	t.Parallel()

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("I was unable to extract any structured data."), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	_, err := e.Enrich(context.Background(), "acme.com", "ask", testPages())
	require.Error(t, err)

	var malformed *jsonx.MalformedOutputError
	assert.True(t, errors.As(err, &malformed))
}

func TestEnrich_EmptyModelResponse(t *testing.T) {
	t.Parallel()

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{}, nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	_, err := e.Enrich(context.Background(), "acme.com", "ask", testPages())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text in model response")
}

func TestEnrich_TransportError(t *testing.T) {
	t.Parallel()

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("anthropic: create message: connection refused"))

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	_, err := e.Enrich(context.Background(), "acme.com", "ask", testPages())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich message")
}

func TestMagic_Success(t *testing.T) {
	t.Parallel()

	modelOutput := `{
		"subject": {"name": "OpenAI", "type": "company"},
		"variables": [
			{"question": "What is their latest funding round?", "name": "recent_funding", "value": "New round led by existing investors", "confidence": 0.7, "source": {"url": "https://techcrunch.com/openai"}},
			{"question": "Who is the CFO?", "name": "cfo_name", "value": null, "confidence": 0}
		]
	}`

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.MaxTokens == int64(magicMaxTokens) &&
			req.Temperature != nil && *req.Temperature == magicTemperature
	})).Return(textResponse(modelOutput), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	resp, err := e.Magic(context.Background(), "OpenAI",
		[]string{"What is their latest funding round?", "Who is the CFO?"}, testPages())
	require.NoError(t, err)

	require.NotNil(t, resp.Subject)
	assert.Equal(t, model.SubjectCompany, resp.Subject.Type)
	require.Len(t, resp.Variables, 2)
	assert.Nil(t, resp.Variables[1].Value)

	ai.AssertExpectations(t)
}

func TestMagic_PromptCarriesQuestions(t *testing.T) {
	t.Parallel()

	var captured anthropic.MessageRequest
	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(textResponse(`{"subject": {"name": "OpenAI"}, "variables": []}`), nil)

	e := &Enricher{AI: ai, Model: "claude-sonnet-4-5-20250929"}
	_, err := e.Magic(context.Background(), "OpenAI", []string{"Who is the CEO?"}, testPages())
	require.NoError(t, err)

	user := captured.Messages[0].Content
	assert.Contains(t, user, "SUBJECT: OpenAI")
	assert.Contains(t, user, "Who is the CEO?")
	assert.Contains(t, user, "https://techcrunch.com/openai")
}

func TestIsDomainLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subject string
		want    bool
	}{
		{"https://acme.com", true},
		{"HTTP://ACME.COM/path", true},
		{"acme.com", true},
		{"acme.io", true},
		{"acme.ai", true},
		{"Acme Labs", false},
		{"Jane Doe", false},
		{"acme.xyz", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDomainLike(tt.subject), "subject %q", tt.subject)
	}
}

func TestDeriveDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "acme.com", want: "acme.com"},
		{in: "https://acme.com/about?x=1", want: "acme.com"},
		{in: "http://www.acme.com", want: "www.acme.com"},
		{in: "", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		got, err := DeriveDomain(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
