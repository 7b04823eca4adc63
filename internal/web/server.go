// Package web is the local web front end of the explorer: server-rendered
// pages, one delegated endpoint for card actions and a JSON hover endpoint.
// Every browser gets its own session and explorer.
package web

import (
	"github.com/gin-gonic/gin"
)

// Server serves the explorer over HTTP
type Server struct {
	browsers    *Browsers
	tileURL     string
	hoverOrigin []string
}

// NewServer creates a web front end over browsers. tileURL is the map tile
// template. hoverOrigins restricts cross-origin access to the hover
// endpoint; empty allows any origin.
func NewServer(browsers *Browsers, tileURL string, hoverOrigins []string) *Server {
	return &Server{
		browsers:    browsers,
		tileURL:     tileURL,
		hoverOrigin: hoverOrigins,
	}
}

// Router configures and returns the front end router
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.SetHTMLTemplate(parseTemplates())

	r.GET("/health", s.health)
	r.OPTIONS("/map/hover", HoverCORS(s.hoverOrigin))

	pages := r.Group("/")
	pages.Use(SessionMiddleware(s.browsers))
	{
		pages.GET("/", s.index)

		pages.GET("/login", s.loginPage)
		pages.POST("/login", s.login)
		pages.GET("/register", s.registerPage)
		pages.POST("/register", s.register)
		pages.POST("/logout", s.logout)

		pages.GET("/map/hover", HoverCORS(s.hoverOrigin), s.hover)

		// Card actions check the token themselves and answer "Login first!"
		// instead of redirecting.
		pages.POST("/actions", s.action)
	}

	protected := pages.Group("/")
	protected.Use(RequireSessionMiddleware())
	{
		protected.GET("/map", s.mapPage)
		protected.POST("/map/search", s.search)
		protected.POST("/map/click", s.click)
		protected.GET("/favorites", s.favoritesPage)
		protected.POST("/favorites/:id/delete", s.removeFavorite)
	}

	return r
}
