// Package extract pulls the login nonce and the profile fields out of raw HTML.
//
// Callers depend on the Parser interface only. Regex mirrors the service's
// markup with independent pattern searches; DOM walks a parsed document with
// goquery and can replace it without touching callers.
package extract

import (
	"fmt"
	"regexp"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/types"
)

// Parser extracts values from the service's HTML pages. Neither method fails:
// a missing nonce is "", missing profile fields take placeholder values.
type Parser interface {
	Nonce(html string) string
	Profile(html string) types.Profile
}

// New returns the parser registered under name.
func New(name string) (Parser, error) {
	switch name {
	case "", config.ParserRegex:
		return NewRegex(), nil
	case config.ParserDOM:
		return NewDOM(), nil
	default:
		return nil, fmt.Errorf("unknown parser %q", name)
	}
}

// defaultProfile is what a page with none of the expected fields yields.
func defaultProfile() types.Profile {
	return types.Profile{
		ID:        config.UnknownID,
		FirstName: config.DefaultFirstName,
		LastName:  config.DefaultLastName,
		Email:     config.DefaultEmail,
	}
}

// Label text that precedes each profile input on the settings page.
const (
	labelFirstName = "First Name"
	labelLastName  = "Last Name"
	labelEmail     = "Email"
)

// =============================================================================
// Regex Parser
// =============================================================================

type pattern struct {
	name  string
	regex *regexp.Regexp
	set   func(*types.Profile, string)
}

// Label patterns are non-greedy across any content, so a label may be followed
// by unrelated markup before its input's value attribute.
func profilePatterns() []pattern {
	return []pattern{
		{name: "id", regex: regexp.MustCompile(`value="([a-f0-9-]{36})"`), set: func(p *types.Profile, v string) { p.ID = v }},
		{name: "firstName", regex: regexp.MustCompile(labelFirstName + `[\s\S]*?value="([^"]*)"`), set: func(p *types.Profile, v string) { p.FirstName = v }},
		{name: "lastName", regex: regexp.MustCompile(labelLastName + `[\s\S]*?value="([^"]*)"`), set: func(p *types.Profile, v string) { p.LastName = v }},
		{name: "email", regex: regexp.MustCompile(labelEmail + `[\s\S]*?value="([^"]*)"`), set: func(p *types.Profile, v string) { p.Email = v }},
	}
}

var noncePattern = regexp.MustCompile(`name="nonce" value="([^"]+)"`)

// Regex extracts fields with independent regular expression searches.
type Regex struct {
	patterns []pattern
}

// NewRegex returns the pattern-matching parser.
func NewRegex() *Regex {
	return &Regex{patterns: profilePatterns()}
}

// Nonce returns the value of the hidden nonce input, or "".
func (r *Regex) Nonce(html string) string {
	if m := noncePattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// Profile fills each field from its own pattern, keeping the placeholder when
// the pattern does not match.
func (r *Regex) Profile(html string) types.Profile {
	p := defaultProfile()
	for _, pat := range r.patterns {
		if m := pat.regex.FindStringSubmatch(html); m != nil {
			pat.set(&p, m[1])
		}
	}
	return p
}
