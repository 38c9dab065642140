package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Selectors describes where grant fields live inside one listing entry.
type Selectors struct {
	Container string `yaml:"container"` // wrapper for one listing entry
	Title     string `yaml:"title"`
	Org       string `yaml:"org,omitempty"`
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // default: href
	Tags      string `yaml:"tags,omitempty"`
	Amount    string `yaml:"amount,omitempty"`
	Status    string `yaml:"status,omitempty"`
	Deadline  string `yaml:"deadline,omitempty"`
}

// ListingSource configures one remote grant listing page.
type ListingSource struct {
	Name      string    `yaml:"name"`
	URL       string    `yaml:"url"`
	Ecosystem string    `yaml:"ecosystem"`
	Chains    []string  `yaml:"chains,omitempty"`
	Category  string    `yaml:"category,omitempty"`
	Selectors Selectors `yaml:"selectors"`
}

// Fetcher scrapes grant listings with rate limiting and retries.
type Fetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxRetries     int
	logger         *zap.Logger
}

// NewFetcher creates a Fetcher with sensible defaults.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		UserAgent:      "repo-radar/1.0 (+https://github.com/alexmejias/repo-radar)",
		RequestTimeout: 30 * time.Second,
		DomainDelay:    1 * time.Second,
		MaxRetries:     3,
		logger:         logger,
	}
}

// Fetch scrapes one listing source and returns normalized grants. Entries
// missing a title are dropped; a page yielding zero entries is an error so
// selector drift gets noticed.
func (f *Fetcher) Fetch(ctx context.Context, source ListingSource) ([]models.Grant, error) {
	parsed, err := url.Parse(source.URL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid listing URL %q", source.URL)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.AllowedDomains(parsed.Host),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.RequestTimeout)
	c.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      f.DomainDelay,
	})

	c.OnError(func(r *colly.Response, err error) {
		if r.Request.Ctx.GetAny("retries") == nil {
			r.Request.Ctx.Put("retries", 0)
		}
		retries := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries {
			r.Request.Ctx.Put("retries", retries+1)
			f.logger.Warn("listing fetch retry",
				zap.String("source", source.Name),
				zap.Int("attempt", retries+1),
				zap.Error(err))
			time.Sleep(time.Duration(retries+1) * time.Second)
			r.Request.Retry()
		}
	})

	linkAttr := source.Selectors.LinkAttr
	if linkAttr == "" {
		linkAttr = "href"
	}

	var grants []models.Grant
	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		raw := RawGrant{
			Title:        e.ChildText(source.Selectors.Title),
			Organization: e.ChildText(source.Selectors.Org),
			Ecosystem:    source.Ecosystem,
			Chains:       source.Chains,
			Category:     source.Category,
			RawAmount:    e.ChildText(source.Selectors.Amount),
			RawStatus:    e.ChildText(source.Selectors.Status),
			RawDeadline:  e.ChildText(source.Selectors.Deadline),
		}
		if source.Selectors.Link != "" {
			raw.URL = e.Request.AbsoluteURL(e.ChildAttr(source.Selectors.Link, linkAttr))
		}
		if source.Selectors.Tags != "" {
			for _, tag := range e.ChildTexts(source.Selectors.Tags) {
				if tag = strings.TrimSpace(tag); tag != "" {
					raw.RawTags = append(raw.RawTags, tag)
				}
			}
		}

		if raw.Title == "" {
			return
		}
		grants = append(grants, FromRaw(raw))
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Visit(source.URL); err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", source.Name, err)
	}
	c.Wait()

	if len(grants) == 0 {
		return nil, fmt.Errorf("listing %s yielded no grants (selector drift?)", source.Name)
	}

	f.logger.Info("listing fetched",
		zap.String("source", source.Name),
		zap.Int("grants", len(grants)))
	return grants, nil
}
