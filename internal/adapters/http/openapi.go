package http

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIFS embed.FS

var (
	openAPIOnce sync.Once
	openAPIDoc  []byte
	openAPIErr  error
)

// getOpenAPIJSON returns the embedded API description rendered as JSON.
// The conversion runs once.
func getOpenAPIJSON() ([]byte, error) {
	openAPIOnce.Do(func() {
		openAPIDoc, openAPIErr = renderOpenAPI()
	})
	return openAPIDoc, openAPIErr
}

func renderOpenAPI() ([]byte, error) {
	raw, err := openAPIFS.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading openapi.yaml: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi.yaml: %w", err)
	}
	return json.MarshalIndent(jsonCompatible(doc), "", "  ")
}

// jsonCompatible rewrites YAML maps with non-string keys so that
// encoding/json accepts them. Non-string keys are formatted with %v.
func jsonCompatible(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, value := range v {
			v[key] = jsonCompatible(value)
		}
		return v
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[fmt.Sprint(key)] = jsonCompatible(value)
		}
		return out
	case []interface{}:
		for i, value := range v {
			v[i] = jsonCompatible(value)
		}
		return v
	default:
		return v
	}
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>geomkit API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`

// handleDocs serves a Swagger UI page for /openapi.json.
func (s *Server) handleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}
