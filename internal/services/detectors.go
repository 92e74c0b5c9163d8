package services

import (
	"net/url"
	"regexp"
	"strings"
)

// Text heuristics for the live abuse feed. All pure and deterministic; the
// rules are fixed on purpose, this is not a rule engine.

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s)]+`)

var suspiciousHosts = []string{
	"bit.ly", "tinyurl.com", "t.me", "wa.me", "discord.gg", "goo.gl",
}

var suspiciousTLDs = []string{
	".ru", ".cn", ".xyz", ".top", ".pw", ".click", ".link", ".icu",
}

var scamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)investment|invest now|roi|double your|crypto|bitcoin|bnb|usdt`),
	regexp.MustCompile(`(?i)send money|wire transfer|western union|gift card|paypal|cash app`),
	regexp.MustCompile(`(?i)outside the app|off-platform|telegram|whatsapp|contact me on`),
	regexp.MustCompile(`(?i)advance fee|lottery|prize|winnings|deposit`),
}

// IsPhishing reports whether the text carries a URL on a link shortener or
// messaging host, or under a suspicious TLD. Benign links do not flag.
func IsPhishing(text string) bool {
	for _, raw := range urlPattern.FindAllString(text, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == "" {
			continue
		}
		for _, h := range suspiciousHosts {
			if strings.Contains(host, h) {
				return true
			}
		}
		for _, tld := range suspiciousTLDs {
			if strings.HasSuffix(host, tld) {
				return true
			}
		}
	}
	return false
}

// IsScam reports whether the text matches any of the fixed scam patterns:
// investment lures, money-transfer requests, off-platform contact, or
// advance-fee/lottery language.
func IsScam(text string) bool {
	for _, re := range scamPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeText case-folds and collapses whitespace so repeated messages
// compare equal regardless of spacing.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.ToLower(text), " "))
}
