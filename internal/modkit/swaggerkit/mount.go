// Package swaggerkit serves the api document and its ui under /api/docs
package swaggerkit

import (
	"net/http"

	phttp "rategrid/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const docsRoot = "/api/docs"

// Mount registers the document at /api/docs/doc.json and the ui beside it; disabled mounts nothing
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get(docsRoot, http.RedirectHandler(docsRoot+"/", http.StatusPermanentRedirect).ServeHTTP)
	r.Get(docsRoot+"/doc.json", serveDocJSON())
	r.Handle(docsRoot+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL(docsRoot+"/doc.json"),
	))
}
