package whatsapp

import (
	"net/url"
	"regexp"
	"strings"
)

const chatHost = "https://wa.me/"

var nonDigits = regexp.MustCompile(`\D`)

// Link builds wa.me deep links for one business number.
type Link struct {
	Number string // E.164 digits, no plus sign
}

func NewLink(number string) Link {
	return Link{Number: nonDigits.ReplaceAllString(number, "")}
}

// URL opens a chat with message pre-filled. Spaces encode as %20.
func (l Link) URL(message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return chatHost + l.Number + "?text=" + text
}

// ChatURL opens a chat with no message.
func (l Link) ChatURL() string {
	return chatHost + l.Number
}
