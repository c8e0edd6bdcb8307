package email_template

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy

	// URL attributes come back percent-encoded from the sanitizer.
	encodedToken = regexp.MustCompile(`(?i)%7B%7B([A-Za-z0-9_]+)%7D%7D`)
)

func templateSanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("align", "valign", "width", "height", "bgcolor", "cellpadding", "cellspacing", "border").
			OnElements("table", "tr", "td", "th", "img")
		policy.AllowStyles(
			"color", "background-color", "font-family", "font-size", "font-weight", "font-style",
			"text-align", "text-decoration", "line-height", "margin", "padding", "border", "width",
		).Globally()
		policy.RequireNoFollowOnLinks(false)
		htmlPolicy = policy
	})
	return htmlPolicy
}

// SanitizeHTML strips scripts, event handlers and unknown markup from
// template HTML while keeping merge tags intact.
func SanitizeHTML(raw string) string {
	cleaned := templateSanitizer().Sanitize(raw)
	return encodedToken.ReplaceAllString(cleaned, "{{$1}}")
}
