package model

import "strings"

// OracleID identifies a fortune-telling site.
type OracleID string

const (
	// OracleEnamae is enamae.net (oracle A).
	OracleEnamae OracleID = "enamae"
	// OracleNamaeuranai is namaeuranai.biz (oracle B).
	OracleNamaeuranai OracleID = "namaeuranai"
)

// Oracles lists every oracle in evaluation order.
var Oracles = []OracleID{OracleEnamae, OracleNamaeuranai}

// String returns the identifier.
func (o OracleID) String() string {
	return string(o)
}

// Host returns the site host name, for display.
func (o OracleID) Host() string {
	switch o {
	case OracleEnamae:
		return "enamae.net"
	case OracleNamaeuranai:
		return "namaeuranai.biz"
	default:
		return string(o)
	}
}

// Fortune categories reported by the oracles.
const (
	CategoryHeaven      = "天格"
	CategoryPerson      = "人格"
	CategoryEarth       = "地格"
	CategoryOuter       = "外格"
	CategoryTotal       = "総格"
	CategoryThreeTalent = "三才配置"
	CategoryYinYang     = "陰陽配列"
	CategoryWork        = "仕事運"
	CategoryFamily      = "家庭運"
)

// Categories returns the categories that count towards the oracle's score,
// in display order.
func (o OracleID) Categories() []string {
	switch o {
	case OracleEnamae:
		return []string{CategoryHeaven, CategoryPerson, CategoryEarth, CategoryOuter, CategoryTotal, CategoryThreeTalent}
	case OracleNamaeuranai:
		return []string{CategoryHeaven, CategoryPerson, CategoryEarth, CategoryOuter, CategoryTotal, CategoryWork, CategoryFamily}
	default:
		return nil
	}
}

// descriptionSuffix marks a Verdicts key that holds the explanation text of
// a category instead of its verdict.
const descriptionSuffix = "_説明"

// DescriptionKey returns the Verdicts key holding the description of category.
func DescriptionKey(category string) string {
	return category + descriptionSuffix
}

// IsDescriptionKey reports whether key holds a description.
func IsDescriptionKey(key string) bool {
	return strings.HasSuffix(key, descriptionSuffix)
}

// Verdicts maps a fortune category to the verdict string an oracle returned.
// Description texts are stored under DescriptionKey(category).
// An empty (or nil) Verdicts means the oracle produced nothing.
type Verdicts map[string]string

// Verdict is the closed set of verdict words the oracles use.
type Verdict int

const (
	// VerdictUnknown is any word outside the known vocabulary.
	VerdictUnknown Verdict = iota
	// VerdictSupremelyLucky is 大大吉.
	VerdictSupremelyLucky
	// VerdictVeryLucky is 大吉.
	VerdictVeryLucky
	// VerdictLucky is 吉.
	VerdictLucky
	// VerdictSpecial is 特殊格.
	VerdictSpecial
	// VerdictMixed is 吉凶混合.
	VerdictMixed
	// VerdictUnlucky is 凶.
	VerdictUnlucky
	// VerdictVeryUnlucky is 大凶.
	VerdictVeryUnlucky
)

var verdictWords = map[string]Verdict{
	"大大吉":  VerdictSupremelyLucky,
	"大吉":   VerdictVeryLucky,
	"吉":    VerdictLucky,
	"特殊格":  VerdictSpecial,
	"吉凶混合": VerdictMixed,
	"凶":    VerdictUnlucky,
	"大凶":   VerdictVeryUnlucky,
}

// ParseVerdict converts a verdict word into a Verdict. It knows the words
// of every oracle; score.Value restricts them to one oracle's table.
// Surrounding whitespace from page markup is ignored; anything else
// returns VerdictUnknown.
func ParseVerdict(s string) Verdict {
	if v, ok := verdictWords[strings.TrimSpace(s)]; ok {
		return v
	}
	return VerdictUnknown
}

// String returns the verdict word.
func (v Verdict) String() string {
	switch v {
	case VerdictSupremelyLucky:
		return "大大吉"
	case VerdictVeryLucky:
		return "大吉"
	case VerdictLucky:
		return "吉"
	case VerdictSpecial:
		return "特殊格"
	case VerdictMixed:
		return "吉凶混合"
	case VerdictUnlucky:
		return "凶"
	case VerdictVeryUnlucky:
		return "大凶"
	default:
		return "不明"
	}
}
