package affiliate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLinkBaseURL is the tracked-link prefix used when none is configured
const DefaultLinkBaseURL = "https://affiliate.example.com/ref"

// whitespaceRun matches what a JavaScript \s matches, Unicode spaces such as NBSP included
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// Slug lower-cases a brand name and replaces each whitespace run with "-"
func Slug(brandName string) string {
	lower := cases.Lower(language.Und).String(brandName)
	return whitespaceRun.ReplaceAllString(lower, "-")
}

// GenerateLink builds the tracked URL <baseURL>/<code>/<slug>.
// It has no side effects; identical inputs always give identical output.
func GenerateLink(baseURL, code, brandName string) string {
	if baseURL == "" {
		baseURL = DefaultLinkBaseURL
	}
	if code == "" {
		code = DefaultAffiliateCode
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), code, Slug(brandName))
}

// ShareChannel is how a link leaves the gateway
type ShareChannel string

const (
	ShareChannelCopy     ShareChannel = "copy"
	ShareChannelWhatsApp ShareChannel = "whatsapp"
	ShareChannelFacebook ShareChannel = "facebook"
	ShareChannelTwitter  ShareChannel = "twitter"
)

// IsValid checks if the channel is known
func (c ShareChannel) IsValid() bool {
	switch c {
	case ShareChannelCopy, ShareChannelWhatsApp, ShareChannelFacebook, ShareChannelTwitter:
		return true
	}
	return false
}

// IsSocial reports whether the channel opens a third-party share dialog
func (c ShareChannel) IsSocial() bool {
	return c.IsValid() && c != ShareChannelCopy
}

// ShareURL returns the intent URL for a channel. Copy returns the link itself.
func ShareURL(channel ShareChannel, link string) string {
	escaped := url.QueryEscape(link)
	switch channel {
	case ShareChannelWhatsApp:
		return "https://wa.me/?text=" + escaped
	case ShareChannelFacebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + escaped
	case ShareChannelTwitter:
		return "https://twitter.com/intent/tweet?url=" + escaped
	default:
		return link
	}
}
