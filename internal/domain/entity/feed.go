package entity

// BuffSale — минимальная цена по одному тегу (или без тега).
type BuffSale struct {
	MinPrice float64
	TagID    *int64
	TagName  string
}

// BuffRecord — сырая запись каталога Buff до нормализации.
type BuffRecord struct {
	GoodsID        int64
	MarketHashName string
	UpdateTime     *int64
	StatTime       *int64
	Sales          []BuffSale
}

// CSFloatRecord — сырой листинг CSFloat до нормализации.
type CSFloatRecord struct {
	ID                string
	MarketHashName    string
	PriceCents        int64
	Discount          *float64
	Type              string
	FloatValue        *float64
	PaintSeed         *int64
	WearName          string
	Stickers          []Sticker
	ReferenceQuantity *int
	Watchers          *int
	CreatedAt         string
}
