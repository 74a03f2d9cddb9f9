package swagger

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/inventory/api-contract"
)

const (
	DocsPath = "/docs"
	SpecPath = "/docs/openapi.yml"

	uiVersion = "5.29.3"
)

// Register serves the Swagger UI at DocsPath and the embedded inventory API
// document at SpecPath.
func Register(r chi.Router) {
	templateBytes := []byte(getTemplate("Inventory API", SpecPath))

	r.Get(DocsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(templateBytes)
	})

	specBytes := apicontract.GetSpecBytes()
	r.Get(SpecPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(specBytes)
	})
}

func getTemplate(title, specPath string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="description" content="SwaggerUI" />
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@%[2]s/swagger-ui.css" />
  <link rel="icon" type="image/png" href="https://static1.smartbear.co/swagger/media/assets/swagger_fav.png" sizes="32x32" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@%[2]s/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[3]s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      showExtensions: true,
      showCommonExtensions: true,
    });
  };
</script>
</body>
</html>
`, title, uiVersion, specPath)
}
