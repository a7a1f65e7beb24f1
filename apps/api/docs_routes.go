package main

import (
	"html/template"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/contracts"
)

// docSpecs maps public documentation names to their contract files.
var docSpecs = map[string]string{
	"billing": contracts.BillingPath,
	"access":  contracts.AccessPath,
}

var swaggerUI = template.Must(template.New("docs").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Production Portal API - Swagger UI</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>body{margin:0}</style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        urls: [{{range .}}{ url: "/openapi/{{.}}.json", name: "{{.}}" },{{end}}],
        dom_id: '#swagger-ui',
        deepLinking: true
      });
    </script>
  </body>
</html>`))

// registerDocsRoutes serves the contracts rendered once at startup.
func registerDocsRoutes(router chi.Router, logger *zap.Logger) {
	rendered := make(map[string][]byte, len(docSpecs))
	names := make([]string, 0, len(docSpecs))
	for name, path := range docSpecs {
		b, err := mustLoadSpec(logger, path).MarshalJSON()
		if err != nil {
			logger.Fatal("marshal openapi json", zap.String("name", name), zap.Error(err))
		}
		rendered[name] = b
		names = append(names, name)
	}
	sort.Strings(names)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := swaggerUI.Execute(w, names); err != nil {
			logger.Warn("render swagger ui", zap.Error(err))
		}
	})

	router.Get("/openapi/{name}.json", func(w http.ResponseWriter, r *http.Request) {
		b, ok := rendered[chi.URLParam(r, "name")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	})
}
