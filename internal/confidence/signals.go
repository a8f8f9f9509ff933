package confidence

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealstack-api/internal/models"
)

// Known affiliate-network hosts seen in script src attributes.
var affiliateScriptHosts = []string{
	"impact.com",
	"impactradius",
	"cj.com",
	"emjcd.com",
	"awin1.com",
	"linksynergy.com",
	"skimresources.com",
	"sovrn.com",
	"shareasale.com",
	"partnerize.com",
	"pepperjam.com",
}

// Known affiliate redirect hosts seen in anchor hrefs.
var redirectLinkHosts = []string{
	"go.redirectingat.com",
	"click.linksynergy.com",
	"anrdoezrs.net",
	"dpbolvw.net",
	"kqzyfj.com",
	"tkqlhce.com",
	"goto.walmart.com",
	"prf.hn",
}

// Tracking query parameters that indicate an affiliate-tagged landing URL.
var affiliateURLParams = []string{
	"irclickid", "clickid", "cjevent", "afsrc", "affid", "aff_id",
	"ranmid", "ransiteid", "sscid", "awc", "utm_source",
}

// ExtractSignals derives a SignalSet from a merchant page URL and its raw
// HTML. Extraction is best-effort: malformed HTML yields whatever signals
// were recognizable, never an error the caller has to branch on.
func ExtractSignals(pageURL string, html string) models.SignalSet {
	var out models.SignalSet

	if u, err := url.Parse(pageURL); err == nil {
		q := u.Query()
		for _, p := range affiliateURLParams {
			if q.Get(p) != "" {
				out.URLParams = true
				break
			}
		}
		path := strings.ToLower(u.Path)
		if strings.Contains(path, "checkout") || strings.Contains(path, "cart") || strings.Contains(path, "basket") {
			out.CheckoutPage = true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return out
	}

	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if hostMatches(src, affiliateScriptHosts) {
			out.AffiliateScripts = true
			return false
		}
		return true
	})

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if hostMatches(href, redirectLinkHosts) {
			out.RedirectLinks = true
			return false
		}
		return true
	})

	doc.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if looksLikeCouponField(s) {
			out.CouponField = true
			return false
		}
		return true
	})

	if !out.CheckoutPage {
		// Fall back to body markers when the URL path is unhelpful.
		if doc.Find("form[action*='checkout'], [id*='checkout'], [class*='checkout']").Length() > 0 {
			out.CheckoutPage = true
		}
	}

	return out
}

func hostMatches(ref string, hosts []string) bool {
	ref = strings.ToLower(ref)
	for _, h := range hosts {
		if strings.Contains(ref, h) {
			return true
		}
	}
	return false
}

func looksLikeCouponField(s *goquery.Selection) bool {
	for _, attr := range []string{"id", "name", "placeholder", "aria-label"} {
		v, ok := s.Attr(attr)
		if !ok {
			continue
		}
		v = strings.ToLower(v)
		if strings.Contains(v, "coupon") || strings.Contains(v, "promo") || strings.Contains(v, "discount code") {
			return true
		}
	}
	return false
}
