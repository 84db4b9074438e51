package main

import (
	"github.com/sells-group/prospect-enrich/internal/generate"
	"github.com/sells-group/prospect-enrich/internal/pipeline"
	"github.com/sells-group/prospect-enrich/internal/search"
	"github.com/sells-group/prospect-enrich/pkg/anthropic"
	"github.com/sells-group/prospect-enrich/pkg/tavily"
)

// env bundles the wired service dependencies for a command invocation.
type env struct {
	Searcher *search.Searcher
	Enricher *pipeline.Enricher
}

// initEnv validates credentials and wires provider clients into the search
// and extraction services. Validation happens here, before any network call.
func initEnv() (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ai := anthropic.NewClient(cfg.Anthropic.Key)
	tv := tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))
	gen := &generate.Generator{AI: ai, Model: cfg.Anthropic.Model}
	searcher := search.New(tv, gen, cfg.Search)

	return &env{
		Searcher: searcher,
		Enricher: &pipeline.Enricher{
			AI:       ai,
			Model:    cfg.Anthropic.Model,
			Searcher: searcher,
		},
	}, nil
}
