// Package github reads public GitHub profile pages for the rating pipeline.
package github

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"
	"github.com/okian/hackbite/pkg/retry"
)

const (
	DefaultBaseURL = "https://github.com"
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	// ErrProfileNotFound is returned when the profile page does not exist.
	ErrProfileNotFound = errors.New("github profile not found")
	// ErrEmptyUsername is returned for a blank username.
	ErrEmptyUsername = errors.New("github username is required")
)

var (
	contributionsRe = regexp.MustCompile(`(\d+,\d+|\d+)\s+contributions`)
	licenseRe       = regexp.MustCompile(`(?i)/blob/[^/]+/licen[sc]e`)
)

// Scraper implements rating.Scraper over GitHub's HTML pages.
type Scraper struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  logger.Logger
}

var _ rating.Scraper = (*Scraper)(nil)

// New creates a scraper for github.com unless WithBaseURL says otherwise.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		retry:   retry.Default,
		logger:  logger.Get().Named("github"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape reads the profile, contribution count and pinned repositories of
// username. Repository pages that fail to load leave their signals unset.
func (s *Scraper) Scrape(ctx context.Context, username string) (rating.GitHubProfile, error) {
	const op = "github.scrape"

	username = strings.TrimSpace(username)
	if username == "" {
		return rating.GitHubProfile{}, fmt.Errorf("%s: %w", op, ErrEmptyUsername)
	}

	start := time.Now()
	p, err := s.scrape(ctx, username)
	metrics.RecordScrape(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		return rating.GitHubProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Scraper) scrape(ctx context.Context, username string) (rating.GitHubProfile, error) {
	doc, err := s.fetch(ctx, "/"+url.PathEscape(username))
	if err != nil {
		return rating.GitHubProfile{}, err
	}

	p := rating.GitHubProfile{
		Username: username,
		FullName: text(doc.Find("span[itemprop=name]").First()),
		Bio:      text(doc.Find("div.user-profile-bio").First()),
	}

	p.Contributions, p.ContributionDays = contributions(doc.Selection)
	if p.Contributions == nil {
		if frag := s.contributionFragment(ctx, doc, username); frag != nil {
			p.Contributions, p.ContributionDays = contributions(frag.Selection)
		}
	}

	p.Repositories = pinned(doc)
	for i := range p.Repositories {
		p.Repositories[i].URL = s.resolve(p.Repositories[i].URL)
		s.inspectRepository(ctx, &p.Repositories[i])
	}
	return p, nil
}

// fetch GETs ref, relative to the base URL, and parses the page.
func (s *Scraper) fetch(ctx context.Context, ref string) (*goquery.Document, error) {
	target := s.resolve(ref)
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*goquery.Document, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, retry.Permanent(ErrProfileNotFound)
		case resp.StatusCode != http.StatusOK:
			statusErr := &retry.StatusError{StatusCode: resp.StatusCode}
			if retry.RetryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			return nil, retry.Permanent(statusErr)
		}
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		return doc, nil
	})
}

func (s *Scraper) resolve(ref string) string {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// contributionFragment loads the lazily included contribution calendar.
func (s *Scraper) contributionFragment(ctx context.Context, doc *goquery.Document, username string) *goquery.Document {
	src, ok := doc.Find(`include-fragment[src*="/users/` + username + `/contributions"]`).First().Attr("src")
	if !ok || src == "" {
		return nil
	}
	frag, err := s.fetch(ctx, src)
	if err != nil {
		s.logger.Warn(ctx, "contribution calendar unavailable", logger.String("username", username), logger.Error(err))
		return nil
	}
	return frag
}

func (s *Scraper) inspectRepository(ctx context.Context, r *rating.Repository) {
	doc, err := s.fetch(ctx, r.URL)
	if err != nil {
		s.logger.Warn(ctx, "repository page unavailable", logger.String("repository", r.Name), logger.Error(err))
		return
	}
	if readme := doc.Find("div#readme").First(); readme.Length() > 0 {
		r.HasReadme = true
		r.ReadmeLength = len(strings.TrimSpace(readme.Text()))
	}
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if licenseRe.MatchString(href) {
			r.HasLicense = true
			return false
		}
		return true
	})
}

// contributions reads the yearly total, falling back to counting active days
// in the calendar.
func contributions(sel *goquery.Selection) (*int, bool) {
	var total *int
	sel.Find("h2.f4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		m := contributionsRe.FindStringSubmatch(h.Text())
		if m == nil {
			return true
		}
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			total = &n
			return false
		}
		return true
	})
	if total != nil {
		return total, false
	}

	days := sel.Find(".ContributionCalendar-day")
	if days.Length() == 0 {
		return nil, false
	}
	active := 0
	days.Each(func(_ int, d *goquery.Selection) {
		if lvl, err := strconv.Atoi(d.AttrOr("data-level", "0")); err == nil && lvl > 0 {
			active++
		}
	})
	return &active, true
}

func pinned(doc *goquery.Document) []rating.Repository {
	var out []rating.Repository
	doc.Find("div.js-pinned-items-reorder-container div.Box").Each(func(_ int, item *goquery.Selection) {
		var link *goquery.Selection
		item.Find("a[data-view-component=true][href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if a.Find("span.repo").Length() > 0 {
				link = a
				return false
			}
			return true
		})
		if link == nil {
			return
		}
		href := link.AttrOr("href", "")
		repo := rating.Repository{
			Name:        text(link.Find("span.repo").First()),
			URL:         href,
			Description: text(item.Find("p.pinned-item-desc").First()),
			Language:    text(item.Find("span[itemprop=programmingLanguage]").First()),
		}
		item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if a.AttrOr("href", "") == href+"/stargazers" {
				repo.Stars = ParseCount(a.Text())
				return false
			}
			return true
		})
		out = append(out, repo)
	})
	return out
}

// ParseCount converts GitHub's abbreviated counts ("1,204", "16.7k", "2m")
// to integers. Unparseable text yields 0.
func ParseCount(s string) int {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(math.Round(f * mult))
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
