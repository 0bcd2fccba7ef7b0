package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/fba-resolver/internal/model"
)

var urlPattern = regexp.MustCompile(`https?://[^\s,]+`)

// SplitLinks splits value around embedded URLs. Text between URLs is kept
// verbatim and in order. It returns nil when value has no URL.
func SplitLinks(value string) []model.Segment {
	locs := urlPattern.FindAllStringIndex(value, -1)
	if len(locs) == 0 {
		return nil
	}

	segs := make([]model.Segment, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			segs = append(segs, model.Segment{Text: value[last:loc[0]]})
		}
		u := value[loc[0]:loc[1]]
		segs = append(segs, model.Segment{URL: u, Label: LinkLabel(u)})
		last = loc[1]
	}
	if last < len(value) {
		segs = append(segs, model.Segment{Text: value[last:]})
	}
	return segs
}

// LinkLabel names the site a URL points to.
func LinkLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "Website"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case hostIs(host, "linkedin.com"):
		return "LinkedIn"
	case hostIs(host, "twitter.com"), hostIs(host, "x.com"):
		return "Twitter"
	case hostIs(host, "instagram.com"):
		return "Instagram"
	case hostIs(host, "facebook.com"), hostIs(host, "fb.com"):
		return "Facebook"
	default:
		return "Website"
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
