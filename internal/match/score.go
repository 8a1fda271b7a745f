package match

import (
	"fmt"
	"strings"
)

// Tier is the kind of evidence behind a score, weakest first.
type Tier int

const (
	TierNone Tier = iota
	TierSubstring
	TierContextualAlias
	TierAlias
	TierContextualExact
	TierExact
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierSubstring:
		return "substring"
	case TierContextualAlias:
		return "contextual alias"
	case TierAlias:
		return "alias"
	case TierContextualExact:
		return "contextual exact"
	case TierExact:
		return "exact"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Scores of each tier. Substring matches score between substringBase and
// substringBase+substringWeight depending on edit distance.
const (
	ScoreExact           = 1.0
	ScoreContextualExact = 0.95
	ScoreAlias           = 0.9
	ScoreContextualAlias = 0.85

	substringBase   = 0.55
	substringWeight = 0.2
	minSubstringLen = 3
)

// Target describes a field reached by some path, in normalized forms.
type Target struct {
	// Names are the normalized field name and label.
	Names []string
	// Aliases are normalized synonyms of the field.
	Aliases []string
	// Context are normalized names, labels and aliases of the relationships,
	// tables and ranks on the path.
	Context []string
	// Rank is the normalized rank the path passes through last, if any.
	Rank string
	// Primary marks the field a bare rank header ("Species") stands for.
	Primary bool
}

// NewTarget normalizes the raw forms of a target.
func NewTarget(names, aliases, context []string) Target {
	return Target{
		Names:   normalizeAll(names),
		Aliases: normalizeAll(aliases),
		Context: normalizeAll(context),
	}
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))

	for _, s := range in {
		n := NormalizeIdent(s)
		if n == "" || seen[n] {
			continue
		}

		seen[n] = true
		out = append(out, n)
	}

	return out
}

// Score is the outcome of comparing one header with one target.
type Score struct {
	Value float64
	Tier  Tier
	// Reason explains the match, for logs and CLI output.
	Reason string
}

// ScoreHeader scores a normalized header against a target; the best tier wins.
func ScoreHeader(h Header, t Target) Score {
	var best Score

	consider := func(s Score) {
		if s.Value > best.Value {
			best = s
		}
	}

	for _, text := range h.Variants() {
		consider(exactScore(text, t))
		consider(substringScore(text, t))
	}

	return best
}

func exactScore(text string, t Target) Score {
	for _, name := range t.Names {
		if text == name {
			return Score{Value: ScoreExact, Tier: TierExact, Reason: fmt.Sprintf("%q equals field %q", text, name)}
		}
	}

	if t.Primary && t.Rank != "" && text == t.Rank {
		return Score{Value: ScoreContextualExact, Tier: TierContextualExact, Reason: fmt.Sprintf("%q names rank %q", text, t.Rank)}
	}

	for _, name := range t.Names {
		if ctx, ok := contextual(text, name, t.Context); ok {
			return Score{
				Value:  ScoreContextualExact,
				Tier:   TierContextualExact,
				Reason: fmt.Sprintf("%q is %q qualified by %q", text, name, ctx),
			}
		}
	}

	for _, alias := range t.Aliases {
		if text == alias {
			return Score{Value: ScoreAlias, Tier: TierAlias, Reason: fmt.Sprintf("%q is a synonym", text)}
		}
	}

	for _, alias := range t.Aliases {
		if ctx, ok := contextual(text, alias, t.Context); ok {
			return Score{
				Value:  ScoreContextualAlias,
				Tier:   TierContextualAlias,
				Reason: fmt.Sprintf("%q is synonym %q qualified by %q", text, alias, ctx),
			}
		}
	}

	return Score{}
}

// contextual reports whether text is form prefixed or suffixed by one of the context forms.
func contextual(text, form string, context []string) (string, bool) {
	if len(text) <= len(form) {
		return "", false
	}

	for _, ctx := range context {
		if text == ctx+form || text == form+ctx {
			return ctx, true
		}
	}

	return "", false
}

func substringScore(text string, t Target) Score {
	var best Score

	if len(text) < minSubstringLen {
		return best
	}

	forms := make([]string, 0, len(t.Names)+len(t.Aliases))
	forms = append(forms, t.Names...)
	forms = append(forms, t.Aliases...)

	for _, form := range forms {
		if len(form) < minSubstringLen || text == form {
			continue
		}

		if !strings.Contains(text, form) && !strings.HasPrefix(form, text) {
			continue
		}

		value := substringBase + substringWeight*LevenshteinNormalized(text, form)
		if value > best.Value {
			best = Score{Value: value, Tier: TierSubstring, Reason: fmt.Sprintf("%q overlaps %q", text, form)}
		}
	}

	return best
}
