package pipeline

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospect-enrich/internal/model"
)

var legalNameCaser = cases.Title(language.English)

// Unified researches a subject end to end: one intelligent search builds a
// shared page corpus, then both extraction flows run concurrently against
// it. Each flow's failure is isolated to a nil slot in the result; only a
// corpus with zero pages aborts the request, before either flow starts.
func (e *Enricher) Unified(ctx context.Context, subject, query string) (*model.UnifiedResult, error) {
	seedQueries := SplitQueryLines(query)
	isDomain := IsDomainLike(subject)

	found := e.Searcher.Intelligent(ctx, subject, seedQueries)
	if len(found.Pages) == 0 {
		return nil, ErrNoPages
	}

	ask := query
	if ask == "" {
		ask = defaultUnifiedAsk
	}

	var (
		wg         sync.WaitGroup
		enrichment *model.EnrichmentResponse
		magic      *model.MagicVariablesResponse
	)

	// Both flows are independent contracts over the same corpus; join-all,
	// never fail-fast.
	wg.Add(2)
	go func() {
		defer wg.Done()
		resp, err := e.Enrich(ctx, subject, ask, found.Pages)
		if err != nil {
			zap.L().Warn("pipeline: unified enrichment failed",
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		enrichment = resp
	}()
	go func() {
		defer wg.Done()
		resp, err := e.Magic(ctx, subject, found.Questions, found.Pages)
		if err != nil {
			zap.L().Warn("pipeline: unified magic extraction failed",
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		magic = resp
	}()
	wg.Wait()

	if enrichment != nil && enrichment.SubjectCanonical == nil {
		enrichment.SubjectCanonical = defaultCanonical(subject, isDomain)
	}
	if magic != nil && magic.Subject == nil {
		subjectType := model.SubjectUnknown
		if isDomain {
			subjectType = model.SubjectCompany
		}
		magic.Subject = &model.MagicSubject{Name: subject, Type: subjectType}
	}

	return &model.UnifiedResult{
		Subject:       subject,
		IsDomain:      isDomain,
		Enrichment:    enrichment,
		Magic:         magic,
		Sources:       len(found.Pages),
		SearchQueries: found.SearchQueries,
	}, nil
}

// defaultCanonical synthesizes a subject identifier when the model omitted
// one: hostname for domain-like subjects, title-cased legal name otherwise.
func defaultCanonical(subject string, isDomain bool) *model.SubjectCanonical {
	if isDomain {
		if domain, err := DeriveDomain(subject); err == nil {
			return &model.SubjectCanonical{Domain: domain}
		}
	}
	return &model.SubjectCanonical{CompanyLegalName: legalNameCaser.String(subject)}
}

// SplitQueryLines splits a free-form query box into candidate search query
// lines, dropping blanks.
func SplitQueryLines(query string) []string {
	if query == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
