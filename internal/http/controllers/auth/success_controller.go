package auth

import (
	"html/template"
	"net/http"
)

// successPage closes the popup window and signals the opener. The error
// query parameter, when present, is forwarded through postMessage so the
// opener can show it.
var successPage = template.Must(template.New("callback-success").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Signing you in…</title></head>
<body>
<script>
(function () {
  var payload = { type: "auth-callback", error: {{.Error}} };
  if (window.opener) {
    window.opener.postMessage(payload, window.location.origin);
    window.close();
  } else if (!payload.error) {
    window.location.replace("/dashboard");
  }
})();
</script>
<noscript>You can close this window.</noscript>
</body>
</html>
`))

// SuccessController serves the fixed popup-completion page.
type SuccessController struct{}

// NewSuccessController creates a SuccessController.
func NewSuccessController() *SuccessController {
	return &SuccessController{}
}

// Success handles GET /auth/callback-success.
func (c *SuccessController) Success(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = successPage.Execute(w, struct{ Error string }{Error: r.URL.Query().Get("error")})
}
