package explorer

import (
	"context"
	"errors"

	"travelsnap/internal/backend"
	"travelsnap/internal/render"
)

// Notices shown by the favorites flow
const (
	MsgLoginFirst      = "Login first!"
	MsgFavoriteAdded   = "Added to favorites!"
	MsgFavoriteRemoved = "Removed from favorites!"
	MsgAddFailed       = "Failed to add favorite"
	MsgRemoveFailed    = "Failed to remove favorite"
	MsgFavoritesFailed = "Failed to fetch favorites"
)

// ListFavorites fetches the user's favorites and renders them as rows with a
// remove action. Nothing is cached: every call goes to the backend.
func (e *Explorer) ListFavorites(ctx context.Context, ui UI) ([]backend.Favorite, error) {
	if !e.haveToken(ctx, ui) {
		return nil, backend.ErrMissingToken
	}

	list, err := e.api.Favorites(ctx)
	if err != nil {
		return nil, e.favoritesFailed(ui, "list favorites", err, MsgFavoritesFailed)
	}

	rows := make([]render.Card, 0, len(list))
	for _, f := range list {
		rows = append(rows, render.FavoriteCard(f))
	}

	e.mu.Lock()
	e.state.Favorites = rows
	e.state.FavoritesGeneration++
	e.mu.Unlock()

	return list, nil
}

// AddFavorite bookmarks an attraction
func (e *Explorer) AddFavorite(ctx context.Context, ui UI, attractionID int) (*backend.Favorite, error) {
	if !e.haveToken(ctx, ui) {
		return nil, backend.ErrMissingToken
	}

	fav, err := e.api.AddFavorite(ctx, attractionID)
	if err != nil {
		return nil, e.favoritesFailed(ui, "add favorite", err, MsgAddFailed)
	}

	e.log.Info("Favorite added", "attraction_id", attractionID, "favorite_id", fav.ID)
	ui.Alert(MsgFavoriteAdded)
	return fav, nil
}

// RemoveFavorite deletes a favorite by id
func (e *Explorer) RemoveFavorite(ctx context.Context, ui UI, favoriteID int) error {
	if !e.haveToken(ctx, ui) {
		return backend.ErrMissingToken
	}

	if err := e.api.RemoveFavorite(ctx, favoriteID); err != nil {
		return e.favoritesFailed(ui, "remove favorite", err, MsgRemoveFailed)
	}

	e.log.Info("Favorite removed", "favorite_id", favoriteID)
	ui.Alert(MsgFavoriteRemoved)
	return nil
}

// haveToken shows the login notice when no token is stored. It never
// redirects: the user stays where they are.
func (e *Explorer) haveToken(ctx context.Context, ui UI) bool {
	if e.sessions.HasToken(ctx) {
		return true
	}
	ui.Alert(MsgLoginFirst)
	return false
}

func (e *Explorer) favoritesFailed(ui UI, op string, err error, fallback string) error {
	if errors.Is(err, backend.ErrMissingToken) {
		ui.Alert(MsgLoginFirst)
		return err
	}
	return e.fail(ui, op, err, fallback)
}
