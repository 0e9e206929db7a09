package value

import (
	"fmt"
	"strings"
)

// Direction — направление арбитража: на каком рынке покупаем, на каком продаём.
type Direction string

const (
	// DirectionCSFloatToBuff покупка листинга на CSFloat, продажа по флору Buff (направление A).
	DirectionCSFloatToBuff Direction = "CSFLOAT_TO_BUFF"
	// DirectionBuffToCSFloat покупка по флору Buff, продажа на CSFloat (направление B).
	DirectionBuffToCSFloat Direction = "BUFF_TO_CSFLOAT"
)

func (d Direction) String() string {
	return string(d)
}

func (d Direction) Valid() bool {
	return d == DirectionCSFloatToBuff || d == DirectionBuffToCSFloat
}

// Short возвращает однобуквенное обозначение для логов и бота.
func (d Direction) Short() string {
	switch d {
	case DirectionCSFloatToBuff:
		return "A"
	case DirectionBuffToCSFloat:
		return "B"
	default:
		return "?"
	}
}

// BuyMarket — рынок покупки.
func (d Direction) BuyMarket() Market {
	if d == DirectionBuffToCSFloat {
		return MarketBuff
	}
	return MarketCSFloat
}

// SellMarket — рынок продажи.
func (d Direction) SellMarket() Market {
	if d == DirectionBuffToCSFloat {
		return MarketCSFloat
	}
	return MarketBuff
}

// ParseDirection принимает полное имя, короткое "a"/"b" или форму через дефис.
func ParseDirection(s string) (Direction, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch normalized {
	case "A", string(DirectionCSFloatToBuff):
		return DirectionCSFloatToBuff, nil
	case "B", string(DirectionBuffToCSFloat):
		return DirectionBuffToCSFloat, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Market — торговая площадка.
type Market string

const (
	MarketBuff    Market = "buff"
	MarketCSFloat Market = "csfloat"
)

func (m Market) String() string {
	return string(m)
}

func ParseMarket(s string) (Market, error) {
	switch Market(strings.ToLower(strings.TrimSpace(s))) {
	case MarketBuff:
		return MarketBuff, nil
	case MarketCSFloat:
		return MarketCSFloat, nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}
