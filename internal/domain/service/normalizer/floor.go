package normalizer

import "cs2arb/internal/domain/entity"

// FloorPrice — минимум среди положительных цен по тегам.
func FloorPrice(sales []entity.BuffSale) (float64, bool) {
	var (
		floor float64
		found bool
	)

	for _, sale := range sales {
		if sale.MinPrice <= 0 {
			continue
		}
		if !found || sale.MinPrice < floor {
			floor = sale.MinPrice
			found = true
		}
	}

	return floor, found
}

// TagFloors — минимальная положительная цена по каждому именованному тегу.
func TagFloors(sales []entity.BuffSale) map[string]float64 {
	var floors map[string]float64

	for _, sale := range sales {
		if sale.TagName == "" || sale.MinPrice <= 0 {
			continue
		}
		if floors == nil {
			floors = make(map[string]float64)
		}
		if current, ok := floors[sale.TagName]; !ok || sale.MinPrice < current {
			floors[sale.TagName] = sale.MinPrice
		}
	}

	return floors
}
