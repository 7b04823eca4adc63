package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"travelsnap/internal/explorer"

	"github.com/gin-gonic/gin"
)

const flashCookie = "travelsnap_flash"

var viewPaths = map[explorer.View]string{
	explorer.ViewLogin:     "/login",
	explorer.ViewRegister:  "/register",
	explorer.ViewMap:       "/map",
	explorer.ViewFavorites: "/favorites",
}

// pageUI collects the notices and the navigation of one request
type pageUI struct {
	notices []string
	target  explorer.View
}

func (u *pageUI) Alert(msg string) {
	u.notices = append(u.notices, msg)
}

func (u *pageUI) Navigate(v explorer.View) {
	u.target = v
}

// redirect answers with 303 to the view the request navigated to, or to
// fallback when it did not navigate. Notices travel in the flash cookie.
func redirect(c *gin.Context, ui *pageUI, fallback string) {
	path := fallback
	if p, ok := viewPaths[ui.target]; ok {
		path = p
	}
	setFlash(c, append(pendingFlash(c), ui.notices...))
	c.Redirect(http.StatusSeeOther, path)
}

func setFlash(c *gin.Context, notices []string) {
	if len(notices) == 0 {
		return
	}
	data, err := json.Marshal(notices)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 60, "/", "", false, true)
}

// takeFlash returns the flashed notices and clears the cookie
func takeFlash(c *gin.Context) []string {
	notices := pendingFlash(c)
	if len(notices) > 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	return notices
}

func pendingFlash(c *gin.Context) []string {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	return decodeFlash(value)
}

func decodeFlash(value string) []string {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var notices []string
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}
