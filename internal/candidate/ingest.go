package candidate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/kakusu/internal/crawler"
	"github.com/nao1215/kakusu/internal/model"
)

// dictionaryPath is the first path segment of the name dictionary.
const dictionaryPath = "赤ちゃん名前辞典"

// NameStore persists scraped names. database.Store implements it.
type NameStore interface {
	InsertNames(ctx context.Context, names []model.NameCandidate) (int, error)
}

// Ingester scrapes names for a stroke pattern and stores them.
type Ingester struct {
	fetcher *crawler.Fetcher
	baseURL *url.URL
	store   NameStore
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock overrides time.Now for ScrapedAt.
func WithClock(now func() time.Time) Option {
	return func(i *Ingester) {
		i.now = now
	}
}

// NewIngester creates an Ingester for the site at baseURL.
func NewIngester(fetcher *crawler.Fetcher, baseURL string, store NameStore, opts ...Option) (*Ingester, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	i := &Ingester{
		fetcher: fetcher,
		baseURL: u,
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// ListURL returns the list page of names with the given stroke counts.
func (i *Ingester) ListURL(strokes []int, gender model.Gender) string {
	sex := "m"
	if gender == model.GenderFemale {
		sex = "f"
	}
	ref := &url.URL{Path: dictionaryPath + "/" + sex + "/jikaku/" + FormatStrokes(strokes) + "/"}
	return i.baseURL.ResolveReference(ref).String()
}

// Ingest scrapes the names matching strokes and gender and stores them.
// It returns the number of newly stored names.
func (i *Ingester) Ingest(ctx context.Context, strokes []int, gender model.Gender) (int, error) {
	if len(strokes) < 1 || len(strokes) > 3 {
		return 0, fmt.Errorf("%w: need 1 to 3 values, got %d", ErrInvalidStrokes, len(strokes))
	}

	listURL := i.ListURL(strokes, gender)
	i.logger.Debug("fetching name list", "url", listURL)
	doc, err := i.fetcher.Fetch(ctx, listURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch name list: %w", err)
	}

	names := i.fromTable(doc.Root, strokes, gender)
	if len(names) == 0 {
		names, err = i.fromLetterPages(ctx, doc.Root, strokes, gender)
		if err != nil {
			return 0, err
		}
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoNames, listURL)
	}

	n, err := i.store.InsertNames(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("failed to store names: %w", err)
	}
	i.logger.Info("names ingested",
		"strokes", FormatStrokes(strokes),
		"gender", gender.Word(),
		"found", len(names),
		"new", n,
	)
	return n, nil
}

// fromTable reads the tabular list layout.
func (i *Ingester) fromTable(root *html.Node, strokes []int, gender model.Gender) []model.NameCandidate {
	var names []model.NameCandidate
	for _, row := range crawler.QuerySelectorAll(root, "div.jikakuListBox table tbody tr") {
		link := crawler.QuerySelector(row, "td.cell-name a")
		if link == nil {
			continue
		}
		nameNode := crawler.QuerySelector(row, "td.cell-name span")
		if nameNode == nil {
			nameNode = link
		}
		name := crawler.Text(nameNode)
		if name == "" {
			continue
		}
		names = append(names, i.newCandidate(
			name,
			crawler.Text(crawler.QuerySelector(row, "td.cell-yomi span")),
			i.resolve(crawler.Attr(link, "href")),
			strokes,
			gender,
		))
	}
	return names
}

// fromLetterPages follows the per-letter index used when the list page
// has no table, and reads the reading of every name from its detail page.
func (i *Ingester) fromLetterPages(ctx context.Context, root *html.Node, strokes []int, gender model.Gender) ([]model.NameCandidate, error) {
	box := crawler.QuerySelector(root, "div.malenamelist_box")
	lists := crawler.QuerySelectorAll(box, "ul")
	if len(lists) < 2 {
		return nil, nil
	}

	var names []model.NameCandidate
	for _, a := range crawler.QuerySelectorAll(lists[1], "li a[href]") {
		pageURL := i.resolve(crawler.Attr(a, "href"))
		page, err := i.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			i.logger.Warn("skipping letter page", "url", pageURL, "error", err)
			continue
		}

		for _, link := range crawler.QuerySelectorAll(page.Root, "div.malenamelist_box ul.ml-box li a[href]") {
			name := crawler.Text(link)
			if name == "" {
				continue
			}
			detailURL := i.resolve(crawler.Attr(link, "href"))
			yomi := ""
			if detail, err := i.fetcher.Fetch(ctx, detailURL); err == nil {
				yomi = crawler.Text(crawler.QuerySelector(detail.Root, "span.yomi"))
			} else if ctx.Err() != nil {
				return nil, ctx.Err()
			} else {
				i.logger.Warn("failed to fetch name detail", "url", detailURL, "error", err)
			}
			names = append(names, i.newCandidate(name, yomi, detailURL, strokes, gender))
		}
	}
	return names, nil
}

func (i *Ingester) newCandidate(name, yomi, sourceURL string, strokes []int, gender model.Gender) model.NameCandidate {
	c := model.NameCandidate{
		Name:      name,
		Yomi:      yomi,
		Chars:     len(strokes),
		Gender:    gender.Word(),
		SourceURL: sourceURL,
		ScrapedAt: i.now(),
	}
	copy(c.Strokes[:], strokes)
	for _, s := range strokes {
		c.TotalStrokes += s
	}
	return c
}

// resolve turns href into an absolute URL on the site. Unparsable values
// are returned unchanged.
func (i *Ingester) resolve(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return i.baseURL.ResolveReference(ref).String()
}
