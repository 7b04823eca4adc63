package explorer

import (
	"context"
	"fmt"

	"travelsnap/internal/render"
)

// Action is a user trigger on a rendered card: the stable action kind, the
// record id and the render generation the card was shown under.
type Action struct {
	Kind       string `json:"kind" form:"data-action"`
	ID         int    `json:"id" form:"data-id"`
	Generation int    `json:"generation" form:"data-generation"`
}

// Dispatch is the single entry point for card actions. An action is only
// handled when its card is part of the current render; anything else is
// dropped with ErrStaleAction before any request is made.
func (e *Explorer) Dispatch(ctx context.Context, ui UI, a Action) error {
	e.mu.Lock()
	var (
		cards      []render.Card
		generation int
	)
	switch a.Kind {
	case render.ActionFavorite:
		cards, generation = e.state.Cards, e.state.Generation
	case render.ActionRemove:
		cards, generation = e.state.Favorites, e.state.FavoritesGeneration
	default:
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	bound := a.Generation == generation && hasAction(cards, a)
	e.mu.Unlock()

	if !bound {
		e.log.Debug("Dropping stale action",
			"kind", a.Kind,
			"id", a.ID,
			"generation", a.Generation,
			"current_generation", generation,
		)
		return ErrStaleAction
	}

	switch a.Kind {
	case render.ActionFavorite:
		_, err := e.AddFavorite(ctx, ui, a.ID)
		return err
	default:
		return e.RemoveFavorite(ctx, ui, a.ID)
	}
}

// Bind returns the action for a card of the current render
func (e *Explorer) Bind(c render.Card) Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Bind(c)
}

// Bind returns the action for a card of this state, tagged with the
// generation the state was taken at. Pages bind from one Snapshot so their
// buttons always match the cards they show.
func (s *State) Bind(c render.Card) Action {
	generation := s.Generation
	if c.Action.Kind == render.ActionRemove {
		generation = s.FavoritesGeneration
	}
	return Action{Kind: c.Action.Kind, ID: c.Action.ID, Generation: generation}
}

func hasAction(cards []render.Card, a Action) bool {
	for _, c := range cards {
		if c.Action.Kind == a.Kind && c.Action.ID == a.ID {
			return true
		}
	}
	return false
}
