package blocktag

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// EscapePolicy selects how markup and body are treated before they are
// interpolated into the fragment.
type EscapePolicy int

const (
	// EscapeNone interpolates markup and body verbatim. Callers are trusted to
	// supply safe text.
	EscapeNone EscapePolicy = iota
	// EscapeHTML escapes HTML-special characters in markup and body.
	EscapeHTML
	// EscapeSanitize strips all markup from the label and reduces the body to
	// user-generated-content safe HTML.
	EscapeSanitize
)

var escapePolicyNames = map[EscapePolicy]string{
	EscapeNone:     "none",
	EscapeHTML:     "html",
	EscapeSanitize: "sanitize",
}

func (p EscapePolicy) String() string {
	if name, ok := escapePolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("EscapePolicy(%d)", int(p))
}

// ParseEscapePolicy converts a policy name ("none", "html", "sanitize") into
// an EscapePolicy. The empty string selects EscapeNone.
func ParseEscapePolicy(raw string) (EscapePolicy, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return EscapeNone, nil
	}
	for policy, candidate := range escapePolicyNames {
		if candidate == name {
			return policy, nil
		}
	}
	return EscapeNone, fmt.Errorf("blocktag: unknown escape policy %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (p EscapePolicy) MarshalText() ([]byte, error) {
	if _, ok := escapePolicyNames[p]; !ok {
		return nil, fmt.Errorf("blocktag: unknown escape policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *EscapePolicy) UnmarshalText(text []byte) error {
	policy, err := ParseEscapePolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

func (p EscapePolicy) escapeLabel(s string) string {
	switch p {
	case EscapeHTML:
		return html.EscapeString(s)
	case EscapeSanitize:
		return labelSanitizer().Sanitize(s)
	default:
		return s
	}
}

func (p EscapePolicy) escapeBody(s string) string {
	switch p {
	case EscapeHTML:
		return html.EscapeString(s)
	case EscapeSanitize:
		return bodySanitizer().Sanitize(s)
	default:
		return s
	}
}

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy

	bodyPolicyOnce sync.Once
	bodyPolicy     *bluemonday.Policy
)

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}

func bodySanitizer() *bluemonday.Policy {
	bodyPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "code", "pre", "div")
		bodyPolicy = policy
	})
	return bodyPolicy
}
