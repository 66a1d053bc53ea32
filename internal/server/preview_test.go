package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuepreview/internal/config"
	"issuepreview/internal/content"
	"issuepreview/internal/markdown"
)

const bugTemplate = `name: Bug report
description: File a <bug>
labels: [bug]
body:
  - type: textarea
    attributes:
      label: What happened?
    validations:
      required: true
`

func newTestServer(t *testing.T, cfg config.Config) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bug.yml"), []byte(bugTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.yaml"), []byte("name: [oops"), 0o644))

	store, err := content.NewStore(root)
	require.NoError(t, err)

	server, err := New(cfg, store, "../../templates")
	require.NoError(t, err)
	return server, root
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestPreviewSource(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	tests := []struct {
		name        string
		contentType string
		body        string
		target      string
		wantStatus  int
		wantPage    bool
		contains    []string
	}{
		{
			name:        "form field",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"content": {bugTemplate}}.Encode(),
			target:      "/preview",
			wantStatus:  http.StatusOK,
			wantPage:    true,
			contains:    []string{"<h1>Bug report</h1>", "File a &lt;bug&gt;", `<span class="required-asterisk"> *</span>`},
		},
		{
			name:        "form field fragment",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"content": {bugTemplate}, "fragment": {"1"}}.Encode(),
			target:      "/preview",
			wantStatus:  http.StatusOK,
			contains:    []string{`<div class="issue-template"><h1>Bug report</h1>`},
		},
		{
			name:        "raw body fragment",
			contentType: "application/yaml",
			body:        bugTemplate,
			target:      "/preview?fragment=1",
			wantStatus:  http.StatusOK,
			contains:    []string{`<span class="label">bug</span>`},
		},
		{
			name:       "malformed yaml is rendered in band",
			body:       "name: [oops",
			target:     "/preview?fragment=1",
			wantStatus: http.StatusOK,
			contains:   []string{`<p class="error">Error parsing template: parse yaml:`},
		},
		{
			name:       "non-object document",
			body:       "- a\n- b",
			target:     "/preview?fragment=1",
			wantStatus: http.StatusOK,
			contains:   []string{`<p class="error">Invalid YAML format: Expected an object</p>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := serve(server, req)

			require.Equal(t, tt.wantStatus, w.Code)
			body := w.Body.String()
			assert.Equal(t, tt.wantPage, strings.HasPrefix(body, "<!DOCTYPE html>"), body)
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestShowTemplate(t *testing.T) {
	server, root := newTestServer(t, config.Config{RefreshSeconds: 2})

	w := serve(server, httptest.NewRequest(http.MethodGet, "/templates/bug", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Bug report</h1>")
	assert.Contains(t, w.Body.String(), "<title>bug · Issue Template Preview</title>")
	assert.Contains(t, w.Body.String(), `http-equiv="refresh" content="2"`)

	// Edits on disk show up on the next request.
	require.NoError(t, os.WriteFile(filepath.Join(root, "bug.yml"), []byte("name: Edited"), 0o644))
	w = serve(server, httptest.NewRequest(http.MethodGet, "/templates/bug/fragment", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `<div class="issue-template"><h1>Edited</h1></div>`, w.Body.String())
}

func TestShowTemplateBrokenSource(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	w := serve(server, httptest.NewRequest(http.MethodGet, "/templates/broken/fragment", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), `<p class="error">Error parsing template:`))
}

func TestShowTemplateNotFound(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	for _, target := range []string{"/templates/missing", "/templates/config/fragment", "/templates/.hidden"} {
		w := serve(server, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
}

func TestShowLibrary(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	w := serve(server, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `href="/templates/bug"`)
	assert.Contains(t, body, "Bug report")
	assert.Contains(t, body, `href="/templates/broken"`)
	assert.Contains(t, body, "parse yaml")

	w = serve(server, httptest.NewRequest(http.MethodGet, "/templates?q=bug+report", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `href="/templates/bug"`)
	assert.NotContains(t, body, `href="/templates/broken"`)
	assert.Contains(t, body, "Showing 1 of 2 templates")
}

func TestShowEditor(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	w := serve(server, httptest.NewRequest(http.MethodGet, "/editor?slug=bug", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit bug")
	assert.Contains(t, w.Body.String(), "name: Bug report")
}

func TestRootRedirectsAndHealth(t *testing.T) {
	server, _ := newTestServer(t, config.Config{})

	w := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/templates", w.Header().Get("Location"))

	w = serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestGoldmarkEngine(t *testing.T) {
	server, _ := newTestServer(t, config.Config{MarkdownEngine: markdown.EngineGoldmark})

	src := "body:\n  - type: markdown\n    attributes:\n      value: \"- one\\n- two\"\n"
	req := httptest.NewRequest(http.MethodPost, "/preview?fragment=1", strings.NewReader(src))
	w := serve(server, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<li>one</li>")
}
