package middleware

import (
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
)

// Gzip returns a middleware that compresses response bodies for clients
// that accept gzip. WebSocket upgrades are passed through untouched.
func Gzip(next http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(512),
		gzhttp.ContentTypes([]string{"application/json", "text/plain"}),
	)
	if err != nil {
		// Options are static; this only fails on programmer error
		panic(err)
	}
	compressed := wrapper(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}
