package teams

import "strings"

// Normalize lowercases, collapses whitespace and, when the name starts with an alias
// key on a word boundary, replaces the whole name with the canonical nickname.
// "Houston Rockets" → "rockets", "LA  Clippers" → "clippers".
func (t *Table) Normalize(name string) string {
	s := collapse(name)
	if s == "" || t == nil {
		return s
	}
	for _, key := range t.keys {
		if s == key || strings.HasPrefix(s, key+" ") {
			return t.Aliases[key]
		}
	}
	return s
}

// Equivalent reports whether two team names refer to the same team: identical after
// normalization, or one a non-empty substring of the other ("lakers" vs "la lakers").
func (t *Table) Equivalent(a, b string) bool {
	na, nb := t.Normalize(a), t.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Exact reports whether both names normalize to the same string.
func (t *Table) Exact(a, b string) bool {
	na := t.Normalize(a)
	return na != "" && na == t.Normalize(b)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
