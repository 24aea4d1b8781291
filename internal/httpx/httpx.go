// Package httpx holds small gin helpers shared by the page handlers.
package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
)

// ParamID parses a positive integer path parameter. Anything else renders
// notFound, matching how an unknown id behaves.
func ParamID(c *gin.Context, name string, notFound error) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apperr.JSON(c, notFound)
		return 0, false
	}
	return id, true
}

// RedirectBack sends the client to the page it came from, or home.
func RedirectBack(c *gin.Context) {
	c.Redirect(http.StatusFound, SafeReferer(c.GetHeader("Referer")))
}

// SafeReferer keeps only the path and query of referer so a redirect never
// leaves the site.
func SafeReferer(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
