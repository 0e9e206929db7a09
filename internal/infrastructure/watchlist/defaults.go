package watchlist

// DefaultItems — ходовые скины, которые отслеживаются, пока список не задан.
var DefaultItems = []string{ //nolint:gochecknoglobals
	"AK-47 | Case Hardened (Field-Tested)",
	"AK-47 | Case Hardened (Minimal Wear)",
	"AK-47 | Case Hardened (Well-Worn)",
	"AK-47 | Case Hardened (Factory New)",
	"AK-47 | Case Hardened (Battle-Scarred)",
	"AK-47 | Redline (Field-Tested)",
	"AK-47 | Asiimov (Field-Tested)",
	"AK-47 | Asiimov (Battle-Scarred)",
	"AK-47 | Vulcan (Factory New)",
	"AK-47 | Vulcan (Minimal Wear)",
	"AK-47 | Vulcan (Field-Tested)",
	"AWP | Asiimov (Field-Tested)",
	"AWP | Asiimov (Battle-Scarred)",
	"AWP | Asiimov (Well-Worn)",
	"AWP | Lightning Strike (Factory New)",
	"AWP | Dragon Lore (Field-Tested)",
	"AWP | Dragon Lore (Minimal Wear)",
	"AWP | Dragon Lore (Factory New)",
	"M4A4 | Howl (Field-Tested)",
	"M4A4 | Howl (Minimal Wear)",
	"M4A4 | Howl (Factory New)",
	"M4A4 | Asiimov (Field-Tested)",
	"★ Karambit | Case Hardened (Field-Tested)",
	"★ Karambit | Case Hardened (Minimal Wear)",
	"★ Karambit | Case Hardened (Well-Worn)",
	"★ Karambit | Case Hardened (Factory New)",
	"★ Karambit | Doppler (Factory New)",
	"★ Karambit | Fade (Factory New)",
	"★ Karambit | Tiger Tooth (Factory New)",
	"★ Karambit | Marble Fade (Factory New)",
	"★ Butterfly Knife | Case Hardened (Field-Tested)",
	"★ Butterfly Knife | Case Hardened (Minimal Wear)",
	"★ Butterfly Knife | Doppler (Factory New)",
	"★ Butterfly Knife | Fade (Factory New)",
	"★ Sport Gloves | Pandora's Box (Field-Tested)",
	"★ Sport Gloves | Pandora's Box (Minimal Wear)",
	"★ Specialist Gloves | Crimson Kimono (Field-Tested)",
	"★ Specialist Gloves | Crimson Kimono (Minimal Wear)",
}
