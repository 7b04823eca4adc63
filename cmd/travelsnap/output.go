package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"travelsnap/internal/backend"
	"travelsnap/internal/explorer"
	"travelsnap/internal/render"
)

// cliUI prints explorer notices to stderr and remembers where the flow
// wanted to go next.
type cliUI struct {
	w       io.Writer
	alerted int
	target  explorer.View
}

func (u *cliUI) Alert(msg string) {
	u.alerted++
	fmt.Fprintln(u.w, render.InfoStyle.Render(msg))
}

func (u *cliUI) Navigate(v explorer.View) {
	u.target = v
}

// reportedError is a failure the user has already seen as a notice
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

// done turns the result of an explorer call into the command result
func (u *cliUI) done(err error) error {
	if err == nil {
		return nil
	}
	if u.alerted > 0 {
		return &reportedError{err: err}
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// placeResult is the JSON shape of search and click results
type placeResult struct {
	Location    *backend.Location `json:"location"`
	Weather     *backend.Weather  `json:"weather"`
	Country     string            `json:"country,omitempty"`
	Center      [2]float64        `json:"center"`
	Zoom        int               `json:"zoom"`
	Attractions []render.Card     `json:"attractions"`
	Generation  int               `json:"generation"`
}

func printPlace(w io.Writer, s explorer.State) error {
	if jsonOutput {
		return printJSON(w, placeResult{
			Location:    s.Location,
			Weather:     s.Weather,
			Country:     s.View.Highlighted,
			Center:      [2]float64{s.View.Center.Lat, s.View.Center.Lon},
			Zoom:        s.View.Zoom,
			Attractions: s.Cards,
			Generation:  s.Generation,
		})
	}

	var b strings.Builder
	if s.Location != nil {
		b.WriteString(render.TitleStyle.Render(s.Location.DisplayName))
		b.WriteString("\n")
		coords := fmt.Sprintf("%.4f, %.4f", s.Location.Latitude, s.Location.Longitude)
		b.WriteString(render.DimStyle.Render(coords) + "\n")
	}
	if s.View.Highlighted != "" {
		b.WriteString("Country: " + s.View.Highlighted + "\n")
	}
	if s.WeatherText != "" {
		b.WriteString(render.SuccessStyle.Render(s.WeatherText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(render.SubtitleStyle.Render("Attractions"))
	b.WriteString("\n")
	b.WriteString(render.TerminalCards(s.Cards, -1))

	_, err := fmt.Fprintln(w, b.String())
	return err
}

func printCards(w io.Writer, title string, cards []render.Card) error {
	if jsonOutput {
		return printJSON(w, cards)
	}
	_, err := fmt.Fprintln(w, render.SubtitleStyle.Render(title)+"\n"+render.TerminalCards(cards, -1))
	return err
}
