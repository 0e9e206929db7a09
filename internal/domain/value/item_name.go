package value

import "strings"

const nameSeparator = "|"

// ItemName — разобранное имя предмета "Weapon | Skin (Wear)".
// Пустая строка в поле означает, что часть не распознана.
type ItemName struct {
	Weapon string
	Skin   string
	Wear   string
}

// ParseItemName никогда не возвращает ошибку: неудачный разбор только
// уменьшает детализацию.
func ParseItemName(marketHashName string) ItemName {
	weapon, rest, ok := strings.Cut(marketHashName, nameSeparator)
	if !ok {
		return ItemName{}
	}

	weapon = strings.TrimSpace(weapon)
	rest = strings.TrimSpace(rest)

	if weapon == "" || rest == "" {
		return ItemName{}
	}

	open := strings.LastIndex(rest, "(")
	if open > 0 && strings.HasSuffix(rest, ")") {
		skin := strings.TrimSpace(rest[:open])
		wear := strings.TrimSpace(rest[open+1 : len(rest)-1])
		if skin != "" && wear != "" {
			return ItemName{Weapon: weapon, Skin: skin, Wear: wear}
		}
	}

	return ItemName{Weapon: weapon, Skin: rest}
}
