package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"travelsnap/internal/explorer"
	"travelsnap/internal/render"
	"travelsnap/internal/tui"

	"github.com/spf13/cobra"
)

var (
	lat float64
	lon float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find a place and show its weather and attractions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var clickCmd = &cobra.Command{
	Use:     "click",
	Short:   "Explore the country at a coordinate",
	PreRunE: loadBoundaries,
	RunE:    runClick,
}

var hoverCmd = &cobra.Command{
	Use:     "hover",
	Short:   "Show country details at a coordinate",
	PreRunE: loadBoundaries,
	RunE:    runHover,
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List and manage favorite attractions",
	RunE:  runFavoritesList,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite attractions",
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <attraction-id>",
	Short: "Add an attraction to favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <favorite-id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesRemove,
}

var exploreCmd = &cobra.Command{
	Use:     "explore",
	Short:   "Start the interactive explorer",
	PreRunE: loadBoundaries,
	RunE:    runExplore,
}

func init() {
	for _, cmd := range []*cobra.Command{clickCmd, hoverCmd} {
		cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
		cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
		cmd.MarkFlagRequired("lat")
		cmd.MarkFlagRequired("lon")
	}

	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd)
}

func loadBoundaries(cmd *cobra.Command, args []string) error {
	return application.LoadBoundaries(cmd.Context())
}

func runSearch(cmd *cobra.Command, args []string) error {
	ui := &cliUI{w: cmd.ErrOrStderr()}
	if err := application.Explorer.Search(cmd.Context(), ui, strings.Join(args, " ")); err != nil {
		return ui.done(err)
	}
	return printPlace(cmd.OutOrStdout(), application.Explorer.Snapshot())
}

func runClick(cmd *cobra.Command, args []string) error {
	ui := &cliUI{w: cmd.ErrOrStderr()}
	err := application.Explorer.ClickBoundary(cmd.Context(), ui, lat, lon)
	if explorer.IsNoFeature(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), render.DimStyle.Render("No country at this point."))
		return nil
	}
	if err != nil {
		return ui.done(err)
	}
	return printPlace(cmd.OutOrStdout(), application.Explorer.Snapshot())
}

func runHover(cmd *cobra.Command, args []string) error {
	info, err := application.Explorer.Hover(cmd.Context(), lat, lon)
	switch {
	case errors.Is(err, explorer.ErrNoBoundaries):
		return errors.New("country boundaries are not loaded; set BOUNDARIES_SOURCE")
	case explorer.IsNoFeature(err):
		fmt.Fprintln(cmd.ErrOrStderr(), render.DimStyle.Render("No country at this point."))
		return nil
	case err != nil:
		return fmt.Errorf("country details for %s: %w", application.Explorer.Snapshot().Hovered, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), info)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), render.BoxStyle.Render(render.CountryText(info)))
	return err
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	ui := &cliUI{w: cmd.ErrOrStderr()}
	if _, err := application.Explorer.ListFavorites(cmd.Context(), ui); err != nil {
		return ui.done(err)
	}
	return printCards(cmd.OutOrStdout(), "Favorites", application.Explorer.Snapshot().Favorites)
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid attraction id %q", args[0])
	}

	ui := &cliUI{w: cmd.ErrOrStderr()}
	fav, err := application.Explorer.AddFavorite(cmd.Context(), ui, id)
	if err != nil {
		return ui.done(err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), fav)
	}
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid favorite id %q", args[0])
	}

	ui := &cliUI{w: cmd.ErrOrStderr()}
	return ui.done(application.Explorer.RemoveFavorite(cmd.Context(), ui, id))
}

func runExplore(cmd *cobra.Command, args []string) error {
	m, err := tui.Run(cmd.Context(), application.Explorer)
	if err != nil {
		return err
	}
	if m.LoggedOut {
		fmt.Fprintln(cmd.ErrOrStderr(), render.DimStyle.Render("Session ended. Run `travelsnap login` to sign in."))
	}
	return nil
}
