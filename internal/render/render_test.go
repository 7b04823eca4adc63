package render

import (
	"strings"
	"testing"

	"travelsnap/internal/backend"
	"travelsnap/internal/countries"

	"github.com/stretchr/testify/assert"
)

func TestCardFor(t *testing.T) {
	card := CardFor(backend.Attraction{ID: 42, Name: "Louvre", Country: "France"})

	assert.Equal(t, Card{
		Key:      "attraction-42",
		Title:    "Louvre",
		Subtitle: "France",
		Action:   Action{Kind: ActionFavorite, ID: 42},
	}, card)
}

func TestCards_KeepsOrderAndIsPure(t *testing.T) {
	list := []backend.Attraction{
		{ID: 2, Name: "Eiffel Tower", Country: "France"},
		{ID: 1, Name: "Louvre", Country: "France"},
	}

	first := Cards(list)
	second := Cards(list)

	assert.Equal(t, first, second)
	assert.Equal(t, "Eiffel Tower", first[0].Title)
	assert.Equal(t, 1, first[1].Action.ID)
	assert.NotNil(t, Cards(nil))
	assert.Empty(t, Cards(nil))
}

func TestFavoriteCard(t *testing.T) {
	named := FavoriteCard(backend.Favorite{ID: 7, AttractionID: 42, Name: "Louvre", Description: "museum"})
	assert.Equal(t, "favorite-7", named.Key)
	assert.Equal(t, "Louvre", named.Title)
	assert.Equal(t, Action{Kind: ActionRemove, ID: 7}, named.Action)

	bare := FavoriteCard(backend.Favorite{ID: 8, AttractionID: 5})
	assert.Equal(t, "Attraction #5", bare.Title)
}

func TestWeatherText(t *testing.T) {
	tests := []struct {
		name    string
		weather *backend.Weather
		want    string
	}{
		{"fractional", &backend.Weather{Temperature: 18.5, Description: "light rain"}, "18.5°C, light rain"},
		{"whole", &backend.Weather{Temperature: 20, Description: "clear sky"}, "20°C, clear sky"},
		{"below zero", &backend.Weather{Temperature: -3.25, Description: "snow"}, "-3.25°C, snow"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeatherText(tt.weather))
		})
	}
}

func TestCountryText(t *testing.T) {
	text := CountryText(&countries.Info{
		Name:       "France",
		Capital:    "Paris",
		Region:     "Europe",
		Population: 67391582,
		Currency:   "EUR",
		Languages:  []string{"French"},
	})

	assert.Equal(t, strings.Join([]string{
		"France",
		"Capital: Paris",
		"Region: Europe",
		"Population: 67,391,582",
		"Currency: EUR",
		"Languages: French",
	}, "\n"), text)

	assert.Contains(t, CountryText(&countries.Info{Name: "Antarctica"}), "Capital: N/A")
	assert.Empty(t, CountryText(nil))
}

func TestPopulation(t *testing.T) {
	tests := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		67391582:   "67,391,582",
		-123:       "-123",
		-1234567:   "-1,234,567",
		1000000000: "1,000,000,000",
	}

	for n, want := range tests {
		assert.Equal(t, want, Population(n))
	}
}

func TestTerminalCards(t *testing.T) {
	cards := Cards([]backend.Attraction{{ID: 1, Name: "Louvre", Country: "France"}, {ID: 2, Name: "Orsay"}})

	out := TerminalCards(cards, 1)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Louvre")
	assert.Contains(t, lines[1], "> ")
	assert.Contains(t, lines[1], "#2")

	assert.Contains(t, TerminalCards(nil, 0), "nothing to show")
}
