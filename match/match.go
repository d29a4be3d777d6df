package match

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// ErrInvalidPattern is returned when a pattern fails to compile.
var ErrInvalidPattern = errors.New("match: invalid pattern")

// Tier identifies which pattern produced a match.
type Tier int

const (
	Primary Tier = iota + 1
	Secondary
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Engine selects the regular expression implementation.
type Engine string

const (
	// EngineRE2 uses the standard library regexp package (linear time).
	EngineRE2 Engine = "re2"

	// EngineRegexp2 uses github.com/dlclark/regexp2, which supports
	// backtracking constructs such as lookarounds and backreferences.
	EngineRegexp2 Engine = "regexp2"
)

// defaultMatchTimeout bounds a single regexp2 evaluation.
const defaultMatchTimeout = 2 * time.Second

// Options configures a Matcher.
type Options struct {
	// Engine selects the regexp implementation. Empty means EngineRE2.
	Engine Engine

	// Timeout bounds each regexp2 evaluation. Ignored by EngineRE2.
	// Zero means two seconds.
	Timeout time.Duration
}

// RawMatch is one substring recognized by a pattern.
type RawMatch struct {
	Text string
	Tier Tier
}

// pattern is the engine-neutral view of a compiled expression.
type pattern interface {
	findAll(text string) []string
	String() string
}

// Matcher applies the primary and secondary identifier patterns.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	primary   pattern
	secondary pattern
}

// New compiles the primary and secondary patterns.
func New(primary, secondary string, opts Options) (*Matcher, error) {
	p, err := compile(primary, opts)
	if err != nil {
		return nil, fmt.Errorf("primary pattern: %w", err)
	}
	s, err := compile(secondary, opts)
	if err != nil {
		return nil, fmt.Errorf("secondary pattern: %w", err)
	}
	return &Matcher{primary: p, secondary: s}, nil
}

// Find returns all non-overlapping primary matches followed by all
// non-overlapping secondary matches, each in order of appearance.
func (m *Matcher) Find(text string) []RawMatch {
	var out []RawMatch
	for _, s := range m.primary.findAll(text) {
		out = append(out, RawMatch{Text: s, Tier: Primary})
	}
	for _, s := range m.secondary.findAll(text) {
		out = append(out, RawMatch{Text: s, Tier: Secondary})
	}
	return out
}

// Best returns the first primary match, or the first secondary match when
// the primary pattern does not match. ok is false when neither matches.
func (m *Matcher) Best(text string) (RawMatch, bool) {
	if all := m.primary.findAll(text); len(all) > 0 {
		return RawMatch{Text: all[0], Tier: Primary}, true
	}
	if all := m.secondary.findAll(text); len(all) > 0 {
		return RawMatch{Text: all[0], Tier: Secondary}, true
	}
	return RawMatch{}, false
}

// Patterns returns the source of the primary and secondary patterns.
func (m *Matcher) Patterns() (primary, secondary string) {
	return m.primary.String(), m.secondary.String()
}

func compile(expr string, opts Options) (pattern, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
	}

	switch opts.Engine {
	case "", EngineRE2:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		return re2Pattern{re}, nil

	case EngineRegexp2:
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		re.MatchTimeout = opts.Timeout
		if re.MatchTimeout <= 0 {
			re.MatchTimeout = defaultMatchTimeout
		}
		return backtrackPattern{re}, nil

	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidPattern, opts.Engine)
	}
}

type re2Pattern struct {
	re *regexp.Regexp
}

func (p re2Pattern) findAll(text string) []string {
	return p.re.FindAllString(text, -1)
}

func (p re2Pattern) String() string {
	return p.re.String()
}

type backtrackPattern struct {
	re *regexp2.Regexp
}

// findAll stops at the first evaluation error (a timeout) and returns the
// matches found so far.
func (p backtrackPattern) findAll(text string) []string {
	var out []string
	m, err := p.re.FindStringMatch(text)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = p.re.FindNextMatch(m)
	}
	return out
}

func (p backtrackPattern) String() string {
	return p.re.String()
}
