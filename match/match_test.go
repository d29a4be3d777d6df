package match

import (
	"errors"
	"reflect"
	"testing"
)

const (
	primaryExpr   = `[A-Z]{3}\d{10}`
	secondaryExpr = `\d{2}/\d{6}-\d`
)

func newMatcher(t *testing.T, engine Engine) *Matcher {
	t.Helper()
	m, err := New(primaryExpr, secondaryExpr, Options{Engine: engine})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []RawMatch
	}{
		{
			name: "secondary format with label",
			text: "Protocolo: 10/003229-0",
			want: []RawMatch{{Text: "10/003229-0", Tier: Secondary}},
		},
		{
			name: "primary format",
			text: "Ref PIP1902094449 recebido",
			want: []RawMatch{{Text: "PIP1902094449", Tier: Primary}},
		},
		{
			name: "primary before secondary regardless of position",
			text: "10/003229-0 and PIP1902094449 and ABC0000000001",
			want: []RawMatch{
				{Text: "PIP1902094449", Tier: Primary},
				{Text: "ABC0000000001", Tier: Primary},
				{Text: "10/003229-0", Tier: Secondary},
			},
		},
		{
			name: "case sensitive",
			text: "pip1902094449",
			want: nil,
		},
		{
			name: "repeated matches are all returned",
			text: "PIP1902094449 PIP1902094449",
			want: []RawMatch{
				{Text: "PIP1902094449", Tier: Primary},
				{Text: "PIP1902094449", Tier: Primary},
			},
		},
		{
			name: "no match",
			text: "nothing to see here",
			want: nil,
		},
	}

	for _, engine := range []Engine{EngineRE2, EngineRegexp2} {
		m := newMatcher(t, engine)
		for _, tt := range tests {
			t.Run(string(engine)+"/"+tt.name, func(t *testing.T) {
				got := m.Find(tt.text)
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Find(%q) = %v, want %v", tt.text, got, tt.want)
				}
			})
		}
	}
}

func TestBest(t *testing.T) {
	m := newMatcher(t, EngineRE2)

	got, ok := m.Best("10/003229-0 then PIP1902094449")
	if !ok || got.Text != "PIP1902094449" || got.Tier != Primary {
		t.Errorf("expected primary match to win, got %v (ok=%v)", got, ok)
	}

	got, ok = m.Best("only 10/003229-0")
	if !ok || got.Tier != Secondary {
		t.Errorf("expected secondary fallback, got %v (ok=%v)", got, ok)
	}

	if _, ok := m.Best("nothing"); ok {
		t.Error("expected no match")
	}
}

func TestRegexp2Lookaround(t *testing.T) {
	m, err := New(`(?<=Protocolo:\s*)\d{2}/\d{6}-\d`, secondaryExpr, Options{Engine: EngineRegexp2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := m.Find("Protocolo: 10/003229-0")
	if len(got) != 2 || got[0].Text != "10/003229-0" || got[0].Tier != Primary {
		t.Errorf("unexpected matches: %v", got)
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		opts      Options
	}{
		{"empty primary", "", secondaryExpr, Options{}},
		{"bad primary", "[A-Z", secondaryExpr, Options{}},
		{"bad secondary", primaryExpr, "(", Options{}},
		{"lookbehind on re2", `(?<=x)y`, secondaryExpr, Options{Engine: EngineRE2}},
		{"unknown engine", primaryExpr, secondaryExpr, Options{Engine: "pcre"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.primary, tt.secondary, tt.opts)
			if !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("expected ErrInvalidPattern, got %v", err)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	m := newMatcher(t, EngineRegexp2)
	p, s := m.Patterns()
	if p != primaryExpr || s != secondaryExpr {
		t.Errorf("unexpected patterns %q %q", p, s)
	}
}

func TestTierString(t *testing.T) {
	if Primary.String() != "primary" || Secondary.String() != "secondary" {
		t.Error("unexpected tier names")
	}
	if Tier(9).String() != "Tier(9)" {
		t.Errorf("unexpected unknown tier name %q", Tier(9).String())
	}
}
