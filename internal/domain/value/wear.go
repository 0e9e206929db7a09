package value

const (
	WearFactoryNew    = "Factory New"
	WearMinimalWear   = "Minimal Wear"
	WearFieldTested   = "Field-Tested"
	WearWellWorn      = "Well-Worn"
	WearBattleScarred = "Battle-Scarred"
)

// WearFromFloat переводит float предмета в название износа.
func WearFromFloat(f float64) string {
	switch {
	case f < 0.07:
		return WearFactoryNew
	case f < 0.15:
		return WearMinimalWear
	case f < 0.38:
		return WearFieldTested
	case f < 0.45:
		return WearWellWorn
	default:
		return WearBattleScarred
	}
}
