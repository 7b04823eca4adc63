// Package render turns backend records into UI descriptions. Every function
// here is pure: the same input always yields the same output.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"travelsnap/internal/backend"
	"travelsnap/internal/countries"
)

// ActionFavorite is the stable action kind carried by attraction cards
const ActionFavorite = "favorite"

// ActionRemove is the stable action kind carried by favorite rows
const ActionRemove = "remove"

// Action is the handler binding of a card: a kind and the record id
type Action struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
}

// Card describes one rendered attraction
type Card struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Action   Action `json:"action"`
}

// CardFor renders an attraction as a card with a favorite action
func CardFor(a backend.Attraction) Card {
	return Card{
		Key:      "attraction-" + strconv.Itoa(a.ID),
		Title:    a.Name,
		Subtitle: a.Country,
		Action:   Action{Kind: ActionFavorite, ID: a.ID},
	}
}

// Cards renders attractions in backend order
func Cards(list []backend.Attraction) []Card {
	cards := make([]Card, 0, len(list))
	for _, a := range list {
		cards = append(cards, CardFor(a))
	}
	return cards
}

// FavoriteCard renders a favorite with a remove action
func FavoriteCard(f backend.Favorite) Card {
	title := f.Name
	if title == "" {
		title = "Attraction #" + strconv.Itoa(f.AttractionID)
	}
	return Card{
		Key:      "favorite-" + strconv.Itoa(f.ID),
		Title:    title,
		Subtitle: f.Description,
		Action:   Action{Kind: ActionRemove, ID: f.ID},
	}
}

// WeatherText renders a snapshot as "<temp>°C, <description>"
func WeatherText(w *backend.Weather) string {
	if w == nil {
		return ""
	}
	return fmt.Sprintf("%s°C, %s", strconv.FormatFloat(w.Temperature, 'f', -1, 64), w.Description)
}

// CountryText renders country metadata as one "Label: value" line per field
func CountryText(info *countries.Info) string {
	if info == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(info.Name)
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	capital := info.Capital
	if capital == "" {
		capital = "N/A"
	}
	line("Capital", capital)
	line("Region", info.Region)
	line("Population", Population(info.Population))
	line("Currency", info.Currency)
	line("Languages", strings.Join(info.Languages, ", "))
	return b.String()
}

// Population formats n with thousands separators
func Population(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
