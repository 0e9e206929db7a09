package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain/service/classifier"
	"cs2arb/internal/domain/value"
)

func TestClassify(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name string
		want value.Category
	}{
		{name: "Sticker | Foo", want: value.CategorySticker},
		{name: "Sticker | Crown (Foil)", want: value.CategorySticker},
		{name: "Sealed Graffiti | Recoil AK-47 (Frog Green)", want: value.CategoryGraffiti},
		{name: "Graffiti | Worry", want: value.CategoryGraffiti},
		{name: "Patch | Phoenix", want: value.CategoryPatch},
		{name: "Sir Bloody Darryl | The Professionals Agent | x", want: value.CategoryAgent},
		{name: "Lt. Commander | SEAL Frogman Operator | x", want: value.CategoryAgent},
		{name: "Music Kit | Kelly Bailey, Hazardous Environments", want: value.CategoryMusicKit},
		{name: "Operation Breakout Weapon Case", want: value.CategoryCase},
		{name: "CS:GO Case Key", want: value.CategoryKey},
		{name: "Paris 2023 Legends Sticker Capsule", want: value.CategoryExcluded},
		{name: "Operation Riptide Premium Pass", want: value.CategoryExcluded},
		{name: "Souvenir Package", want: value.CategoryExcluded},
		{name: "AWP | Pink DDPAT (Field-Tested)", want: value.CategoryExcluded},
		{name: "★ Karambit | Doppler (Factory New)", want: value.CategoryKnife},
		{name: "★ Sport Gloves | Pandora's Box (Field-Tested)", want: value.CategoryGloves},
		{name: "★ Hand Wraps | Slaughter (Minimal Wear)", want: value.CategoryGloves},
		{name: "AK-47 | Redline (Field-Tested)", want: value.CategoryWeapon},
		{name: "Something Entirely New", want: value.CategoryUnknown},
		{name: "AK-47 | Redline", want: value.CategoryUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.want, classifier.Classify(tc.name))
		})
	}
}

func TestFilterAllowed(t *testing.T) {
	rq := require.New(t)

	defaults := classifier.NewFilter([]string{"weapon", "knife", "gloves"})
	withKeys := classifier.NewFilter([]string{"key"})
	everything := classifier.NewFilter(nil)

	testCases := []struct {
		name   string
		filter classifier.Filter
		input  string
		want   bool
	}{
		{name: "Weapon allowed", filter: defaults, input: "AK-47 | Redline (Field-Tested)", want: true},
		{name: "Knife allowed", filter: defaults, input: "★ Butterfly Knife | Fade (Factory New)", want: true},
		{name: "Sticker rejected", filter: defaults, input: "Sticker | Foo", want: false},
		{name: "Capsule rejected even with weapon allowed", filter: defaults, input: "Weapon | Capsule (Holo)", want: false},
		{name: "Unknown passes", filter: defaults, input: "Mystery Item", want: true},
		{name: "Case allowed via key", filter: withKeys, input: "Chroma 2 Case", want: true},
		{name: "Empty allowed list lets stickers through", filter: everything, input: "Sticker | Foo", want: true},
		{name: "Empty allowed list still excludes capsules", filter: everything, input: "Stockholm 2021 Capsule", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.want, tc.filter.Allowed(tc.input))
		})
	}
}
