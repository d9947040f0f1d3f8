package service

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/config"
)

// Quote proxies the quotable API for the inspirational-quote endpoints.
type Quote struct {
	client *resty.Client
	logger *zap.SugaredLogger
}

type (
	QuoteResult struct {
		Content string   `json:"content"`
		Author  string   `json:"author"`
		Tags    []string `json:"tags"`
		Source  string   `json:"source"`
	}

	QuoteAuthor struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		QuoteCount  int    `json:"quote_count"`
	}

	QuoteAuthorsResult struct {
		Authors []QuoteAuthor `json:"authors"`
		Total   int           `json:"total"`
	}

	quotableQuote struct {
		Content string   `json:"content"`
		Author  string   `json:"author"`
		Tags    []string `json:"tags"`
	}

	quotableAuthors struct {
		Results []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			QuoteCount  int    `json:"quoteCount"`
		} `json:"results"`
		TotalCount int `json:"totalCount"`
	}
)

const (
	quoteSource      = "Quotable API"
	authorsMaxLimit  = 50
	authorsBaseLimit = 20
	quoteHTTPTimeout = 5 * time.Second
)

func NewQuote(cfg *config.Config, l *zap.SugaredLogger) *Quote {
	client := resty.New().
		SetHostURL(cfg.QuotesAPIURL).
		SetTimeout(quoteHTTPTimeout)

	return &Quote{
		client: client,
		logger: l,
	}
}

func (s *Quote) Random(tags, author string) (*QuoteResult, error) {
	req := s.client.R().SetResult(&quotableQuote{})
	if tags != "" {
		req.SetQueryParam("tags", tags)
	}
	if author != "" {
		req.SetQueryParam("author", author)
	}

	resp, err := req.Get("/random")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "quote service unreachable")
	}
	if resp.IsError() {
		return nil, apperr.Newf(apperr.KindUnavailable, "quote service answered %d", resp.StatusCode())
	}

	q, ok := resp.Result().(*quotableQuote)
	if !ok {
		return nil, apperr.New(apperr.KindUnavailable, "unexpected response from quote service")
	}
	return &QuoteResult{
		Content: q.Content,
		Author:  q.Author,
		Tags:    q.Tags,
		Source:  quoteSource,
	}, nil
}

func (s *Quote) Authors(search string, limit int) (*QuoteAuthorsResult, error) {
	if limit <= 0 {
		limit = authorsBaseLimit
	}
	if limit > authorsMaxLimit {
		limit = authorsMaxLimit
	}

	req := s.client.R().
		SetResult(&quotableAuthors{}).
		SetQueryParam("limit", strconv.Itoa(limit))
	if search != "" {
		req.SetQueryParam("query", search)
	}

	resp, err := req.Get("/authors")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "quote service unreachable")
	}
	if resp.IsError() {
		return nil, apperr.Newf(apperr.KindUnavailable, "quote service answered %d", resp.StatusCode())
	}

	raw, ok := resp.Result().(*quotableAuthors)
	if !ok {
		return nil, apperr.New(apperr.KindUnavailable, "unexpected response from quote service")
	}

	authors := make([]QuoteAuthor, len(raw.Results))
	for i := range raw.Results {
		authors[i] = QuoteAuthor{
			Name:        raw.Results[i].Name,
			Description: raw.Results[i].Description,
			QuoteCount:  raw.Results[i].QuoteCount,
		}
	}
	return &QuoteAuthorsResult{
		Authors: authors,
		Total:   raw.TotalCount,
	}, nil
}
