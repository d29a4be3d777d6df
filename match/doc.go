// Package match finds protocol identifier candidates in recognized text.
//
// Two independent patterns describe the identifier formats in use, for
// example a three-letter prefix followed by ten digits (PIP1902094449) and a
// slash-and-hyphen form (10/003229-0):
//
//	m, err := match.New(`[A-Z]{3}\d{10}`, `\d{2}/\d{6}-\d`, match.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rm := range m.Find(text) {
//	    fmt.Println(rm.Tier, rm.Text)
//	}
//
// [Matcher.Find] returns every non-overlapping match of the primary pattern
// followed by every match of the secondary pattern. Matching is
// case-sensitive and the matched text is returned exactly as it appears.
// [Matcher.Best] is for callers that need a single candidate; it prefers
// the primary pattern.
//
// The default engine is Go's RE2-based regexp package. Patterns that need
// backtracking features such as lookarounds can select [EngineRegexp2].
package match
