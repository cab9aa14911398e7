// Package site serves the embedded landing page with a prediction form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the landing page at / to mux. Paths no other route
// claims fall through to the embedded file server.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("site: mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
