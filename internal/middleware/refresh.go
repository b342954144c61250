package middleware

import "net/http"

// NewSettingRefreshHandler returns a middleware that invokes refresh before
// every request. Control-API traffic is the daemon's equivalent of the app
// coming to the foreground: the moment to re-read the host's mock-location
// setting so handlers and guard rules see a current value, without the
// daemon ever polling in the background.
func NewSettingRefreshHandler(refresh func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refresh()
			next.ServeHTTP(w, r)
		})
	}
}
