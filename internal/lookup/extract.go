package lookup

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jb-miles/castscout/internal/domain"
)

// profileHref reports whether href points at a performer profile page.
// Both the legacy perfid form and the newer opaque-id form are accepted.
func profileHref(href string) bool {
	return strings.Contains(href, "person.rme") || strings.Contains(href, "perfid=")
}

// ExtractCandidates collects every profile-style link from a results page as
// (label, href) pairs, dropping exact duplicates and preserving encounter
// order. Hrefs are resolved against base when one is given.
func ExtractCandidates(doc *goquery.Document, base *url.URL) []domain.Candidate {
	type pair struct{ label, href string }
	seen := make(map[pair]struct{})
	var out []domain.Candidate

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !profileHref(href) {
			return
		}
		label := strings.Join(strings.Fields(sel.Text()), " ")
		if label == "" {
			return
		}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		key := pair{label, href}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, domain.Candidate{Label: label, Href: href})
	})

	return out
}
