// Package classifier определяет тип предмета по market_hash_name и решает,
// пропускать ли его в хранилище.
package classifier

import (
	"strings"

	"cs2arb/internal/domain/value"
)

const starGlyph = "★"

//nolint:gochecknoglobals
var (
	excludedMarkers = []string{"capsule", "package", "pass", "pin"}
	glovesKeywords  = []string{
		"gloves",
		"hand wraps",
		"driver gloves",
		"specialist gloves",
		"sport gloves",
		"moto gloves",
		"hydra gloves",
		"broken fang gloves",
	}
)

// Classify применяет правила по порядку, первое совпадение побеждает.
func Classify(marketHashName string) value.Category {
	name := strings.ToLower(marketHashName)

	switch {
	case strings.HasPrefix(name, "sticker |"):
		return value.CategorySticker
	case strings.Contains(name, "graffiti |") || strings.HasPrefix(name, "sealed graffiti"):
		return value.CategoryGraffiti
	case strings.HasPrefix(name, "patch |"):
		return value.CategoryPatch
	case strings.Contains(name, "agent |") || strings.Contains(name, "operator |"):
		return value.CategoryAgent
	case strings.HasPrefix(name, "music kit |"):
		return value.CategoryMusicKit
	case strings.HasSuffix(name, " case"):
		return value.CategoryCase
	case strings.HasSuffix(name, " key"):
		return value.CategoryKey
	case containsAny(name, excludedMarkers):
		return value.CategoryExcluded
	case strings.HasPrefix(name, starGlyph):
		if containsAny(name, glovesKeywords) {
			return value.CategoryGloves
		}
		return value.CategoryKnife
	case strings.Contains(name, " | ") && strings.Contains(name, "("):
		return value.CategoryWeapon
	default:
		return value.CategoryUnknown
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Filter — набор разрешённых категорий.
type Filter struct {
	allowed map[value.Category]struct{}
}

// NewFilter строит фильтр. Пустой список разрешает всё, кроме исключённого.
func NewFilter(allowed []string) Filter {
	set := make(map[value.Category]struct{}, len(allowed))
	for _, a := range allowed {
		if c := value.ParseCategory(a); c != "" {
			set[c] = struct{}{}
		}
	}
	return Filter{allowed: set}
}

// Allowed решает судьбу записи.
func (f Filter) Allowed(marketHashName string) bool {
	return f.AllowedCategory(Classify(marketHashName))
}

func (f Filter) AllowedCategory(category value.Category) bool {
	switch category {
	case value.CategoryExcluded:
		return false
	case value.CategoryUnknown:
		return true
	}

	if len(f.allowed) == 0 {
		return true
	}

	if category == value.CategoryCase || category == value.CategoryKey {
		return f.has(value.CategoryCase) || f.has(value.CategoryKey)
	}

	return f.has(category)
}

func (f Filter) has(c value.Category) bool {
	_, ok := f.allowed[c]
	return ok
}
