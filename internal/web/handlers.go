package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"travelsnap/internal/backend"
	"travelsnap/internal/explorer"
	"travelsnap/internal/geo"
	"travelsnap/internal/render"

	"github.com/gin-gonic/gin"
)

// boundAction pairs a rendered card with the action its button submits
type boundAction struct {
	Card   render.Card
	Action explorer.Action
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	ui := &pageUI{}
	explorerOf(c).Index(c.Request.Context(), ui)
	redirect(c, ui, "/login")
}

func (s *Server) loginPage(c *gin.Context) {
	page(c, http.StatusOK, "login", "Login", nil, gin.H{"Email": ""})
}

func (s *Server) registerPage(c *gin.Context) {
	page(c, http.StatusOK, "register", "Register", nil, gin.H{"Email": ""})
}

func (s *Server) login(c *gin.Context) {
	email := c.PostForm("email")
	ui := &pageUI{}

	if err := explorerOf(c).Login(c.Request.Context(), ui, email, c.PostForm("password")); err != nil {
		c.Error(err)
		page(c, statusFor(err), "login", "Login", ui, gin.H{"Email": email})
		return
	}
	redirect(c, ui, "/map")
}

func (s *Server) register(c *gin.Context) {
	email := c.PostForm("email")
	ui := &pageUI{}

	if err := explorerOf(c).Register(c.Request.Context(), ui, email, c.PostForm("password")); err != nil {
		c.Error(err)
		page(c, statusFor(err), "register", "Register", ui, gin.H{"Email": email})
		return
	}
	redirect(c, ui, "/login")
}

func (s *Server) logout(c *gin.Context) {
	ui := &pageUI{}
	if err := explorerOf(c).Logout(c.Request.Context(), ui); err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to log out")
		return
	}
	redirect(c, ui, "/login")
}

func (s *Server) mapPage(c *gin.Context) {
	state := explorerOf(c).Snapshot()

	actions := make([]boundAction, 0, len(state.Cards))
	for _, card := range state.Cards {
		actions = append(actions, boundAction{Card: card, Action: state.Bind(card)})
	}

	page(c, http.StatusOK, "map", "Map", nil, gin.H{
		"State":   state,
		"Actions": actions,
		"TileURL": geo.TileURL(s.tileURL, state.View),
	})
}

func (s *Server) search(c *gin.Context) {
	ui := &pageUI{}
	if err := explorerOf(c).Search(c.Request.Context(), ui, c.PostForm("query")); err != nil {
		c.Error(err)
	}
	redirect(c, ui, "/map")
}

func (s *Server) click(c *gin.Context) {
	ui := &pageUI{}
	lat, errLat := strconv.ParseFloat(c.PostForm("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.PostForm("lon"), 64)
	if errLat != nil || errLon != nil {
		ui.Alert("Invalid coordinates.")
		redirect(c, ui, "/map")
		return
	}

	err := explorerOf(c).ClickBoundary(c.Request.Context(), ui, lat, lon)
	if err != nil && !explorer.IsNoFeature(err) {
		c.Error(err)
	}
	redirect(c, ui, "/map")
}

func (s *Server) hover(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
		return
	}

	info, err := explorerOf(c).Hover(c.Request.Context(), lat, lon)
	switch {
	case errors.Is(err, explorer.ErrNoBoundaries):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "boundaries not loaded"})
	case explorer.IsNoFeature(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "no country at this point"})
	case err != nil:
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{
			"country": explorerOf(c).Snapshot().Hovered,
			"error":   "country info unavailable",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"country": info,
			"text":    render.CountryText(info),
		})
	}
}

// action is the single delegated endpoint behind every card button
func (s *Server) action(c *gin.Context) {
	var a explorer.Action
	if err := c.ShouldBind(&a); err != nil {
		c.String(http.StatusBadRequest, "malformed action")
		return
	}
	c.Set("action", a.Kind)

	back := "/map"
	if a.Kind == render.ActionRemove {
		back = "/favorites"
	}

	ui := &pageUI{}
	err := explorerOf(c).Dispatch(c.Request.Context(), ui, a)
	switch {
	case errors.Is(err, explorer.ErrUnknownAction):
		c.String(http.StatusBadRequest, "unknown action")
		return
	case errors.Is(err, explorer.ErrStaleAction):
		slog.Debug("Stale card action dropped", "kind", a.Kind, "id", a.ID, "request_id", c.GetString("request_id"))
	case err != nil:
		c.Error(err)
	}
	redirect(c, ui, back)
}

func (s *Server) favoritesPage(c *gin.Context) {
	ui := &pageUI{}
	status := http.StatusOK
	if _, err := explorerOf(c).ListFavorites(c.Request.Context(), ui); err != nil {
		c.Error(err)
		status = statusFor(err)
	}

	state := explorerOf(c).Snapshot()
	actions := make([]boundAction, 0, len(state.Favorites))
	for _, card := range state.Favorites {
		actions = append(actions, boundAction{Card: card, Action: state.Bind(card)})
	}

	page(c, status, "favorites", "Favorites", ui, gin.H{"Actions": actions})
}

func (s *Server) removeFavorite(c *gin.Context) {
	ui := &pageUI{}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid favorite id")
		return
	}

	if err := explorerOf(c).RemoveFavorite(c.Request.Context(), ui, id); err != nil {
		c.Error(err)
	}
	redirect(c, ui, "/favorites")
}

// page renders a template with the flashed notices followed by those raised
// while handling this request.
func page(c *gin.Context, status int, name, title string, ui *pageUI, data gin.H) {
	notices := takeFlash(c)
	if ui != nil {
		notices = append(notices, ui.notices...)
	}
	data["Title"] = title
	data["Notices"] = notices
	c.HTML(status, name, data)
}

// statusFor maps a failed operation to the status of the re-rendered page
func statusFor(err error) int {
	var apiErr *backend.APIError
	var netErr *backend.NetworkError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	case errors.Is(err, explorer.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrMissingToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
