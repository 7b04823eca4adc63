package web

import (
	"html/template"

	"travelsnap/internal/render"
)

var funcs = template.FuncMap{
	"population": render.Population,
}

const layout = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TravelSnap - {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 960px; padding: 1rem; }
nav a, nav button { margin-right: 1rem; }
.notice { background: #f1fa8c; padding: .5rem 1rem; margin: .5rem 0; border-radius: 4px; }
.attraction-item { border: 1px solid #ddd; border-radius: 6px; padding: .5rem 1rem; margin: .5rem 0; }
.map img { width: 256px; height: 256px; border: 1px solid #bd93f9; }
</style>
</head>
<body>
<nav>
<a href="/map">Map</a>
<a href="/favorites">Favorites</a>
<form method="post" action="/logout" style="display:inline"><button>Logout</button></form>
</nav>
{{range .Notices}}<div class="notice" role="alert">{{.}}</div>
{{end}}{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "login"}}{{template "head" .}}
<h1>Login</h1>
<form method="post" action="/login" id="loginForm">
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Login</button>
</form>
<p>No account? <a href="/register">Register</a></p>
{{template "foot" .}}{{end}}

{{define "register"}}{{template "head" .}}
<h1>Register</h1>
<form method="post" action="/register" id="registerForm">
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Register</button>
</form>
<p>Already registered? <a href="/login">Login</a></p>
{{template "foot" .}}{{end}}

{{define "map"}}{{template "head" .}}
<h1>Explore</h1>
<form method="post" action="/map/search">
<input type="text" name="query" id="searchInput" placeholder="Search a place">
<button type="submit" id="searchBtn">Search</button>
</form>
<form method="post" action="/map/click">
<input type="number" step="any" name="lat" placeholder="Latitude" required>
<input type="number" step="any" name="lon" placeholder="Longitude" required>
<button type="submit">Select country</button>
</form>
<div class="map">
<img src="{{.TileURL}}" alt="map tile at zoom {{.State.View.Zoom}}">
<p>Center {{printf "%.4f" .State.View.Center.Lat}}, {{printf "%.4f" .State.View.Center.Lon}} (zoom {{.State.View.Zoom}})
{{with .State.View.Highlighted}} - <strong>{{.}}</strong>{{end}}</p>
{{with .State.Country}}<p class="country">{{.Name}}: capital {{or .Capital "N/A"}}, {{.Region}}, population {{population .Population}}</p>{{end}}
</div>
<h2 id="locationName">{{with .State.Location}}{{.DisplayName}}{{end}}</h2>
<p id="weatherInfo">{{with .State.WeatherText}}{{.}}{{end}}</p>
<div id="attractionList">
{{range .Actions}}<div class="attraction-item" data-key="{{.Card.Key}}">
<h4>{{.Card.Title}}</h4>
<p>{{.Card.Subtitle}}</p>
<form method="post" action="/actions">
<input type="hidden" name="data-action" value="{{.Action.Kind}}">
<input type="hidden" name="data-id" value="{{.Action.ID}}">
<input type="hidden" name="data-generation" value="{{.Action.Generation}}">
<button class="favorite-btn">Add to Favorites</button>
</form>
</div>
{{end}}</div>
{{template "foot" .}}{{end}}

{{define "favorites"}}{{template "head" .}}
<h1>Favorites</h1>
<div id="favoritesList">
{{range .Actions}}<div class="attraction-item" data-key="{{.Card.Key}}">
<h4>{{.Card.Title}}</h4>
{{with .Card.Subtitle}}<p>{{.}}</p>{{end}}
<form method="post" action="/actions">
<input type="hidden" name="data-action" value="{{.Action.Kind}}">
<input type="hidden" name="data-id" value="{{.Action.ID}}">
<input type="hidden" name="data-generation" value="{{.Action.Generation}}">
<button>Remove</button>
</form>
</div>
{{else}}<p>No favorites yet.</p>
{{end}}</div>
{{template "foot" .}}{{end}}
`

func parseTemplates() *template.Template {
	return template.Must(template.New("pages").Funcs(funcs).Parse(layout))
}
