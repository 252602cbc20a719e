package rating

import (
	"context"
	"fmt"
	"strings"
)

// GitHubProfile is what the scraper could read from a public profile.
type GitHubProfile struct {
	Username string
	FullName string
	Bio      string
	// Contributions is nil when the contribution graph could not be read.
	Contributions *int
	// ContributionDays is true when Contributions counts active days rather
	// than total contributions.
	ContributionDays bool
	Repositories     []Repository
}

// Repository is a pinned repository with the quality signals found on its page.
type Repository struct {
	Name         string
	URL          string
	Description  string
	Language     string
	Stars        int
	HasReadme    bool
	ReadmeLength int
	HasLicense   bool
}

// Scraper reads a public GitHub profile.
type Scraper interface {
	Scrape(ctx context.Context, username string) (GitHubProfile, error)
}

// UsernameFromLink extracts the account name from a profile URL or handle.
func UsernameFromLink(link string) string {
	s := strings.TrimSpace(link)
	for _, prefix := range []string{"https://", "http://"} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
	}
	for _, prefix := range []string{"www.github.com/", "github.com/"} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
	}
	s = strings.TrimPrefix(s, "@")
	s = strings.Trim(s, "/")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// FallbackHighlights replaces the report when the profile cannot be scraped.
const FallbackHighlights = "Could not analyze GitHub profile"

const rule = "=================================================="

// Highlights renders the profile as the text report the rating prompt embeds.
func Highlights(p GitHubProfile) string {
	name := p.FullName
	if name == "" || name == "N/A" {
		name = p.Username
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("")
	line(rule)
	line("      GITHUB PROFILE HIGHLIGHTS for %s", name)
	line(rule)

	line("")
	line("**1. Work Ethic & Consistency:**")
	switch {
	case p.Contributions == nil:
		line("* **Activity (Last Year):** Could not load.")
	case p.ContributionDays:
		line("* **Activity (Last Year):** %d (Active Days).", *p.Contributions)
	default:
		line("* **Activity (Last Year):** %d (Total Contributions).", *p.Contributions)
	}

	line("")
	line("**2. Project Details (Pinned Repositories):**")
	totalStars, documented := 0, 0
	var nonTrivial []string
	if len(p.Repositories) == 0 {
		line("* No pinned repositories found.")
	}
	for _, r := range p.Repositories {
		totalStars += r.Stars
		if r.HasReadme {
			documented++
		}
		lower := strings.ToLower(r.Name)
		if !strings.Contains(lower, "solution") && !strings.Contains(lower, "leetcode") {
			nonTrivial = append(nonTrivial, fmt.Sprintf("%s (%s)", r.Name, orNA(r.Language)))
		}
		readme := "MISSING"
		if r.HasReadme {
			readme = "Exists"
		}
		license := "MISSING"
		if r.HasLicense {
			license = "Exists"
		}
		line("* **%s:**", r.Name)
		line("  - **Description:** %s", orNA(r.Description))
		line("  - **Stars:** %d", r.Stars)
		line("  - **README:** %s", readme)
		line("  - **LICENSE:** %s", license)
	}

	line("")
	line(rule)
	line("      KEY DATA POINTS FOR SCORING")
	line(rule)
	line("* **IMPACT (Community Validation):**")
	line("  - Total Stars on Pinned Repos: %d", totalStars)
	line("")
	line("* **COMPLEXITY (Project Types):**")
	if len(nonTrivial) > 0 {
		line("  - Non-trivial projects identified: %s", strings.Join(nonTrivial, ", "))
	} else {
		line("  - Projects appear to be primarily foundational or solution-based.")
	}
	line("")
	line("* **DOCUMENTATION (Professionalism):**")
	line("  - README files exist for %d out of %d pinned repositories.", documented, len(p.Repositories))
	line("")
	b.WriteString(rule)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
