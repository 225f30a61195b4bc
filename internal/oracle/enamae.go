package oracle

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/kakusu/internal/crawler"
	"github.com/nao1215/kakusu/internal/model"
	"golang.org/x/net/html"
)

var (
	// "天格（祖運）は9画で『凶』"
	quotedVerdict = regexp.MustCompile(`『(.+?)』`)
	// "三才配置は『水⇒金⇒火』で『凶』"
	threeTalentVerdict = regexp.MustCompile(`『(.+?)』で『(.+?)』`)
	// "陰陽配列は「●○」"
	yinYangPattern = regexp.MustCompile(`「(.+?)」`)
)

// fiveGrids are the categories enamae.net reports in "<name>は..『verdict』"
// headings.
var fiveGrids = []string{
	model.CategoryHeaven,
	model.CategoryPerson,
	model.CategoryEarth,
	model.CategoryOuter,
	model.CategoryTotal,
}

// Enamae is the Source for enamae.net.
type Enamae struct {
	fetcher *crawler.Fetcher
	baseURL string
	settings
}

// NewEnamae creates a Source for enamae.net at baseURL.
func NewEnamae(fetcher *crawler.Fetcher, baseURL string, opts ...Option) *Enamae {
	return &Enamae{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: newSettings(opts),
	}
}

// ID implements Source.
func (e *Enamae) ID() model.OracleID {
	return model.OracleEnamae
}

// URL returns the result page URL for q.
func (e *Enamae) URL(q model.Query) string {
	gender := model.GenderMale
	if q.Gender == model.GenderFemale {
		gender = model.GenderFemale
	}
	return fmt.Sprintf("%s/%s/%s__%s", e.baseURL, gender, url.PathEscape(q.Surname), url.PathEscape(q.GivenName))
}

// Lookup implements Source.
func (e *Enamae) Lookup(ctx context.Context, q model.Query) (model.Verdicts, error) {
	u := e.URL(q)
	e.logger.Debug("enamae request", "url", u)

	doc, err := e.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOracleUnavailable, e.ID(), err)
	}

	v := extractEnamae(doc.Root)
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVerdicts, u)
	}
	return v, nil
}

// extractEnamae reads the verdicts from the h2 headings of a result page.
// The description of a category is the first <p> after its heading.
func extractEnamae(root *html.Node) model.Verdicts {
	v := make(model.Verdicts)
	headings := crawler.QuerySelectorAll(root, "h2")

	for _, h2 := range headings {
		text := crawler.Text(h2)
		for _, key := range fiveGrids {
			if !strings.Contains(text, key) {
				continue
			}
			m := quotedVerdict.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v[key] = m[1]
			if p := crawler.FindNext(h2, "p"); p != nil {
				v[model.DescriptionKey(key)] = quotedVerdict.ReplaceAllString(crawler.Text(p), "$1")
			}
		}
	}

	for _, h2 := range headings {
		text := crawler.Text(h2)
		switch {
		case strings.Contains(text, model.CategoryThreeTalent):
			m := threeTalentVerdict.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v[model.CategoryThreeTalent] = m[2]
			desc := "配置: " + m[1]
			if p := crawler.FindNext(h2, "p"); p != nil {
				desc += "\n" + crawler.Text(p)
			}
			v[model.DescriptionKey(model.CategoryThreeTalent)] = desc
		case strings.Contains(text, model.CategoryYinYang):
			m := yinYangPattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v[model.CategoryYinYang] = m[1]
			if p := crawler.FindNext(h2, "p"); p != nil {
				v[model.DescriptionKey(model.CategoryYinYang)] = crawler.Text(p)
			}
		}
	}
	return v
}
