package screening

import "strings"

// SkillMatcher decides whether a candidate skill satisfies a requested skill.
type SkillMatcher interface {
	Matches(candidateSkill, requested string) bool
}

// ContainmentMatcher matches when either lower-cased string contains the other.
// Free-text skill entries ("React.js", "react native") are tolerated this way.
type ContainmentMatcher struct{}

func (ContainmentMatcher) Matches(candidateSkill, requested string) bool {
	cs := strings.ToLower(strings.TrimSpace(candidateSkill))
	rs := strings.ToLower(strings.TrimSpace(requested))
	if cs == "" || rs == "" {
		return false
	}
	return strings.Contains(cs, rs) || strings.Contains(rs, cs)
}

// LevelKeyword maps a keyword found in education text to an ordinal level.
type LevelKeyword struct {
	Keyword string  `json:"keyword" mapstructure:"keyword"`
	Level   float64 `json:"level" mapstructure:"level"`
}

// LevelTable is an ordered keyword lookup; the first entry contained in the text wins.
type LevelTable struct {
	Entries  []LevelKeyword
	Fallback float64
}

// Lookup returns the level of the first keyword found in text, or the fallback.
func (t LevelTable) Lookup(text string) float64 {
	lower := strings.ToLower(text)
	for _, entry := range t.Entries {
		keyword := strings.ToLower(strings.TrimSpace(entry.Keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, keyword) {
			return entry.Level
		}
	}
	return t.Fallback
}

// KeywordList is a case-insensitive set of substrings.
type KeywordList []string

// MatchAny reports whether text contains any keyword of the list.
func (l KeywordList) MatchAny(text string) bool {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return false
	}
	for _, keyword := range l {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Keywords bundles the lookup tables used by the free-text scorers.
type Keywords struct {
	Education   LevelTable
	MajorCities KeywordList
	Teamwork    KeywordList
}

const defaultEducationLevel = 60

// DefaultKeywords returns the built-in Japanese and English tables.
// Longer, more specific terms come before the terms they contain.
func DefaultKeywords() Keywords {
	return Keywords{
		Education: LevelTable{
			Entries: []LevelKeyword{
				{Keyword: "博士課程", Level: 100},
				{Keyword: "博士", Level: 100},
				{Keyword: "phd", Level: 100},
				{Keyword: "ph.d", Level: 100},
				{Keyword: "doctor", Level: 100},
				{Keyword: "修士課程", Level: 90},
				{Keyword: "修士", Level: 90},
				{Keyword: "master", Level: 90},
				{Keyword: "mba", Level: 90},
				{Keyword: "学士", Level: 80},
				{Keyword: "bachelor", Level: 80},
				{Keyword: "大学卒", Level: 80},
				{Keyword: "大学", Level: 80},
				{Keyword: "university", Level: 80},
				{Keyword: "高専", Level: 75},
				{Keyword: "短大", Level: 70},
				{Keyword: "専門", Level: 70},
				{Keyword: "associate", Level: 70},
				{Keyword: "vocational", Level: 70},
				{Keyword: "高校", Level: 60},
				{Keyword: "高卒", Level: 60},
				{Keyword: "high school", Level: 60},
			},
			Fallback: defaultEducationLevel,
		},
		MajorCities: KeywordList{
			"東京", "大阪", "名古屋", "福岡", "札幌",
			"tokyo", "osaka", "nagoya", "fukuoka", "sapporo",
		},
		Teamwork: KeywordList{
			"チーム", "リード", "マネジメント", "プロジェクト管理",
			"team", "lead", "management", "project management",
		},
	}
}
