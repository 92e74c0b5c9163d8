package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPhishing(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"shortener link", "check this out https://bit.ly/2xyz", true},
		{"telegram link", "talk to me http://t.me/someuser", true},
		{"whatsapp link", "https://wa.me/15551234567", true},
		{"discord invite", "join https://discord.gg/abc123", true},
		{"suspicious tld ru", "visit https://promo-deals.ru/win", true},
		{"suspicious tld xyz", "https://hotgirls.xyz", true},
		{"benign link", "my portfolio is at https://example.com/work", false},
		{"no link", "bit.ly is a shortener but this has no url", false},
		{"plain chat", "hey, how was your day?", false},
		{"netherlands domain ok", "https://news.nl/article", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsPhishing(tt.text))
		})
	}
}

func TestIsScam(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"crypto lure", "I can double your bitcoin in a week", true},
		{"gift card ask", "just send me a gift card and we're good", true},
		{"off platform", "contact me on whatsapp instead", true},
		{"lottery", "you won the lottery, pay the deposit to claim", true},
		{"normal message", "want to grab coffee this weekend?", false},
		{"mentions money innocently", "I spent way too much at the mall", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsScam(tt.text))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "hey you", NormalizeText("  Hey    YOU \n"))
	require.Equal(t, NormalizeText("Hello World"), NormalizeText("hello   world"))
	require.Equal(t, "", NormalizeText("   "))
}
