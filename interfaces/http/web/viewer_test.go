package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func renderPage(t *testing.T, cfg ViewerConfig) string {
	t.Helper()
	v, err := NewViewer(cfg, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	v.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestViewer_RendersConfig(t *testing.T) {
	page := renderPage(t, ViewerConfig{Title: "My graphs", CanvasHeight: 720})
	assert.Contains(t, page, "<title>My graphs</title>")
	assert.Contains(t, page, "720px")

	page = renderPage(t, ViewerConfig{CanvasHeight: 600})
	assert.Contains(t, page, "<title>History graph</title>")
}

func TestViewer_ReloadStartsDisabled(t *testing.T) {
	page := renderPage(t, ViewerConfig{CanvasHeight: 600})

	// The reload control repeats the last fetch, so it only becomes
	// usable after the first load succeeds.
	assert.Contains(t, page, `<button id="reload" disabled>`)
	assert.Contains(t, page, `document.getElementById("reload").disabled = false;`)

	// It is enabled in the success path, not before the fetch resolves.
	success := strings.Index(page, `loadedHid = hid;`)
	enable := strings.Index(page, `document.getElementById("reload").disabled = false;`)
	require.Positive(t, success)
	require.Positive(t, enable)
	assert.Less(t, success, enable)
}

func TestViewer_LabelRuleMatchesServer(t *testing.T) {
	page := renderPage(t, ViewerConfig{CanvasHeight: 600})

	// A node without a pid key renders no label at all; a blank pid gets
	// the placeholder. Same rule as graph.Label.
	assert.Contains(t, page, `!("pid" in n)`)
	assert.Contains(t, page, `"<NULL>"`)
}
