package value

import "strings"

// Category — тип предмета, по которому фильтруется поток.
type Category string

const (
	CategoryWeapon   Category = "weapon"
	CategoryKnife    Category = "knife"
	CategoryGloves   Category = "gloves"
	CategorySticker  Category = "sticker"
	CategoryGraffiti Category = "graffiti"
	CategoryPatch    Category = "patch"
	CategoryAgent    Category = "agent"
	CategoryMusicKit Category = "music_kit"
	CategoryCase     Category = "case"
	CategoryKey      Category = "key"
	// CategoryExcluded всегда отбрасывается, независимо от настроек.
	CategoryExcluded Category = "excluded"
	// CategoryUnknown пропускается по умолчанию.
	CategoryUnknown Category = "unknown"
)

func (c Category) String() string {
	return string(c)
}

func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}
