// Package search turns a subject into a bounded, URL-deduplicated corpus of
// web pages using the Tavily provider and generated queries/hints.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-enrich/internal/config"
	"github.com/sells-group/prospect-enrich/internal/generate"
	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/pkg/tavily"
)

// defaultDomainAsk is the broad query used when a domain-restricted search
// has no caller-supplied ask.
const defaultDomainAsk = "recent news, product launches, hiring announcements, funding rounds, partnerships, awards, press releases, blog posts, company updates"

// Per-strategy result caps.
const (
	domainMaxResults      = 5
	openWebMaxResults     = 7
	intelligentMaxResults = 2
)

// Searcher orchestrates provider queries into page corpora. A single query
// failing is never fatal; only an empty aggregate is surfaced to callers.
type Searcher struct {
	tavily        tavily.Client
	gen           *generate.Generator
	limiter       *rate.Limiter
	queryTimeout  time.Duration
	maxConcurrent int
}

// New builds a Searcher from config.
func New(tc tavily.Client, gen *generate.Generator, cfg config.SearchConfig) *Searcher {
	timeout := time.Duration(cfg.QueryTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	concurrent := cfg.MaxConcurrent
	if concurrent <= 0 {
		concurrent = 4
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &Searcher{
		tavily:        tc,
		gen:           gen,
		limiter:       rate.NewLimiter(rate.Limit(rps), int(rps)),
		queryTimeout:  timeout,
		maxConcurrent: concurrent,
	}
}

// IntelligentResult carries the corpus plus the generated questions and
// queries so downstream extraction can reuse them.
type IntelligentResult struct {
	Pages         []model.Page
	Questions     []string
	SearchQueries []string
}

// DomainOrOpen searches restricted to one domain, then falls back to a
// single open-web query using the domain as a keyword. Provider errors in
// either step count as zero results; an empty return is the caller's
// not-found signal.
func (s *Searcher) DomainOrOpen(ctx context.Context, domain, ask string) []model.Page {
	query := ask
	if query == "" {
		query = defaultDomainAsk
	}

	results := s.runQuery(ctx, query, tavily.SearchOptions{
		MaxResults:     domainMaxResults,
		IncludeDomains: []string{domain},
	})

	if countUsable(results) == 0 {
		results = s.runQuery(ctx, domain+" "+query, tavily.SearchOptions{
			MaxResults: domainMaxResults,
		})
	}

	return collectPages(nil, results)
}

// OpenWeb broadens a subject search with generated hints: the bare subject,
// the subject joined with the top hints, then focused subject+hint combos.
// Queries fan out with bounded concurrency but merge in query order, so
// dedup-by-URL keeps the first occurrence deterministically. When everything
// comes back empty, one quoted exact-phrase query is the last resort.
func (s *Searcher) OpenWeb(ctx context.Context, subject string, questions []string) []model.Page {
	hints := s.gen.Hints(ctx, subject, questions)

	queries := []string{subject}
	if len(hints) > 0 {
		top := hints
		if len(top) > 3 {
			top = top[:3]
		}
		queries = append(queries, subject+" "+strings.Join(top, " "))
	}
	for i, h := range hints {
		if i == 4 {
			break
		}
		queries = append(queries, subject+" "+h)
	}

	pages := s.fanOut(ctx, queries, openWebMaxResults)

	if len(pages) == 0 {
		results := s.runQuery(ctx, `"`+subject+`"`, tavily.SearchOptions{
			MaxResults: openWebMaxResults,
		})
		pages = collectPages(nil, results)
	}

	return pages
}

// Intelligent generates search queries and research questions for the
// subject, executes each query, and returns the deduplicated corpus together
// with what was generated.
func (s *Searcher) Intelligent(ctx context.Context, subject string, seedQueries []string) *IntelligentResult {
	queries := s.gen.SearchQueries(ctx, subject, seedQueries)
	questions := s.gen.Questions(ctx, subject, "Subject: "+subject)

	pages := s.fanOut(ctx, queries, intelligentMaxResults)

	return &IntelligentResult{
		Pages:         pages,
		Questions:     questions,
		SearchQueries: queries,
	}
}

// fanOut executes queries concurrently (bounded) and merges their results in
// query order with first-wins URL dedup.
func (s *Searcher) fanOut(ctx context.Context, queries []string, maxResults int) []model.Page {
	perQuery := make([][]tavily.SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = s.runQuery(gctx, q, tavily.SearchOptions{MaxResults: maxResults})
			return nil
		})
	}
	_ = g.Wait()

	var pages []model.Page
	for _, results := range perQuery {
		pages = collectPages(pages, results)
	}
	return pages
}

// runQuery issues one rate-limited, deadline-bounded provider call. Any
// failure (transport, auth, timeout) is logged and degraded to zero results.
func (s *Searcher) runQuery(ctx context.Context, query string, opts tavily.SearchOptions) []tavily.SearchResult {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	resp, err := s.tavily.Search(qctx, query, opts)
	if err != nil {
		zap.L().Warn("search: query failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return resp.Results
}

// collectPages appends usable results to pages, deduplicating by URL with
// first occurrence winning, and truncating text at ingestion.
func collectPages(pages []model.Page, results []tavily.SearchResult) []model.Page {
	seen := make(map[string]bool, len(pages))
	for _, p := range pages {
		seen[p.URL] = true
	}
	for _, r := range results {
		text := r.Text()
		if r.URL == "" || text == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		pages = append(pages, model.NewPage(r.URL, text))
	}
	return pages
}

func countUsable(results []tavily.SearchResult) int {
	n := 0
	for _, r := range results {
		if r.URL != "" && r.Text() != "" {
			n++
		}
	}
	return n
}
