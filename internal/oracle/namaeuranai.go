package oracle

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/kakusu/internal/crawler"
	"github.com/nao1215/kakusu/internal/model"
	"golang.org/x/net/html"
)

// Namaeuranai is the Source for namaeuranai.biz.
type Namaeuranai struct {
	fetcher *crawler.Fetcher
	baseURL string
	settings
}

// NewNamaeuranai creates a Source for namaeuranai.biz at baseURL.
// The site has served incomplete certificate chains; give fetcher a
// crawler.WithTLSFallback client to keep it usable.
func NewNamaeuranai(fetcher *crawler.Fetcher, baseURL string, opts ...Option) *Namaeuranai {
	return &Namaeuranai{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: newSettings(opts),
	}
}

// ID implements Source.
func (n *Namaeuranai) ID() model.OracleID {
	return model.OracleNamaeuranai
}

// URL returns the result page URL for q.
func (n *Namaeuranai) URL(q model.Query) string {
	return fmt.Sprintf("%s/result/%s_%s/%s",
		n.baseURL,
		url.PathEscape(q.Surname),
		url.PathEscape(q.GivenName),
		url.PathEscape(q.Gender.Japanese()),
	)
}

// Lookup implements Source.
func (n *Namaeuranai) Lookup(ctx context.Context, q model.Query) (model.Verdicts, error) {
	u := n.URL(q)
	n.logger.Debug("namaeuranai request", "url", u)

	doc, err := n.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOracleUnavailable, n.ID(), err)
	}

	v := extractNamaeuranai(doc.Root)
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVerdicts, u)
	}
	return v, nil
}

// extractNamaeuranai reads every div.result-box whose h3.title01 names one
// of the site's categories.
func extractNamaeuranai(root *html.Node) model.Verdicts {
	v := make(model.Verdicts)
	known := model.OracleNamaeuranai.Categories()

	for _, box := range crawler.QuerySelectorAll(root, "div.result-box") {
		key := crawler.Text(crawler.QuerySelector(box, "h3.title01"))
		if !slices.Contains(known, key) {
			continue
		}
		if verdict := crawler.QuerySelector(box, "span.f-large"); verdict != nil {
			v[key] = crawler.Text(verdict)
		}
		if desc := crawler.QuerySelector(box, "p.text02"); desc != nil {
			v[model.DescriptionKey(key)] = crawler.Text(desc)
		}
	}
	return v
}
