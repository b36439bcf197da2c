package club

import (
	"sort"
	"strings"
	"unicode"
)

// PlayerMatch is a player found by name together with how well it matched.
type PlayerMatch struct {
	Player     Player
	Confidence float64
}

// minConfidence is the lowest similarity accepted as a match.
const minConfidence = 0.5

// FindPlayer looks a player up by a free-text name, as typed in a Slack
// command. Exact and substring matches win outright; otherwise the closest
// name above the confidence threshold is returned. It returns nil when
// nothing matches well enough.
func FindPlayer(players []Player, query string) *PlayerMatch {
	matches := MatchPlayers(players, query)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// MatchPlayers ranks players by name similarity to the query, best first.
func MatchPlayers(players []Player, query string) []PlayerMatch {
	q := normalizeName(query)
	if q == "" {
		return nil
	}

	var matches []PlayerMatch
	for _, p := range players {
		score := nameSimilarity(q, normalizeName(p.Name))
		if score >= minConfidence {
			matches = append(matches, PlayerMatch{Player: p, Confidence: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func nameSimilarity(query, name string) float64 {
	switch {
	case query == name:
		return 1.0
	case strings.Contains(name, query):
		// A partial name such as a surname is a strong hint, scaled so the
		// longer fragment ranks higher.
		return 0.9 + 0.1*float64(len([]rune(query)))/float64(len([]rune(name)))
	}
	return max(stringSimilarity(query, name), tokenSimilarity(query, name))
}

// normalizeName lowercases the name and drops everything but letters and
// single spaces. Ё and Е are treated as the same letter.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "ё", "е")

	var result strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}
	distance := levenshteinDistance(r1, r2)
	return 1.0 - float64(distance)/float64(max(len(r1), len(r2)))
}

// tokenSimilarity is the share of query words that closely match a word of the name.
func tokenSimilarity(query, name string) float64 {
	qTokens := strings.Fields(query)
	nTokens := strings.Fields(name)
	if len(qTokens) == 0 || len(nTokens) == 0 {
		return 0.0
	}

	var matchCount int
	for _, qt := range qTokens {
		for _, nt := range nTokens {
			if stringSimilarity(qt, nt) > 0.75 {
				matchCount++
				break
			}
		}
	}
	return float64(matchCount) / float64(max(len(qTokens), len(nTokens)))
}

// levenshteinDistance works on runes so Cyrillic letters count as one edit.
func levenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
