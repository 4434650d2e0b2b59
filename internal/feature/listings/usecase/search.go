package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"umarket/internal/feature/listings/domain/entity"
)

const (
	// searchThreshold は検索結果に含めるための最低スコアです。
	searchThreshold = 0.35
	// tokenContainsScore は単語トークンが検索語を含む場合のスコアです。
	tokenContainsScore = 0.95
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// rankListings はあいまい検索で listings を並べ替えます。
// しきい値を超えるものがなければ元の一覧をそのまま返します。
func rankListings(listings []entity.Listing, search string) []entity.Listing {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return listings
	}

	type scored struct {
		score   float64
		listing entity.Listing
	}
	matches := make([]scored, 0, len(listings))
	for _, l := range listings {
		if s := scoreListing(l, term); s >= searchThreshold {
			matches = append(matches, scored{score: s, listing: l})
		}
	}
	if len(matches) == 0 {
		return listings
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	out := make([]entity.Listing, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.listing)
	}
	return out
}

// scoreListing は name, category, description の中で最も高い一致度を返します。
func scoreListing(l entity.Listing, term string) float64 {
	fields := []string{l.Name, string(l.Category)}
	if l.Description != nil {
		fields = append(fields, *l.Description)
	}

	best := 0.0
	for _, field := range fields {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		if strings.Contains(lower, term) {
			return 1.0
		}
		best = max(best, similarity(term, lower))
		for _, token := range tokenPattern.FindAllString(lower, -1) {
			if strings.Contains(token, term) {
				best = max(best, tokenContainsScore)
				continue
			}
			best = max(best, similarity(term, token))
		}
	}
	return best
}

// similarity は2つの文字列の類似度を0.0〜1.0で返します (2*M/T)。
func similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
