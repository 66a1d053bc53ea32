package server

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"issuepreview/internal/config"
	"issuepreview/internal/content"
	"issuepreview/internal/issuetemplate"
	"issuepreview/internal/preview"
)

const maxSourceBytes = 1 << 20

// Server 负责注册 HTTP 路由并处理请求。
type Server struct {
	cfg       config.Config
	store     *content.Store
	renderer  *issuetemplate.Renderer
	mux       *http.ServeMux
	templates *template.Template
}

type entryListItem struct {
	Slug        string
	Name        string
	Description string
	Fields      int
	Error       string
	ModifiedAt  string
}

type libraryTemplateData struct {
	Title         string
	Root          string
	Entries       []entryListItem
	SearchTerm    string
	TotalEntries  int
	FilteredCount int
	HasFilter     bool
}

type editorTemplateData struct {
	Title   string
	Content string
}

// New 创建一个 Server 并加载模板。
func New(cfg config.Config, store *content.Store, tplDir string) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	tpls, err := template.ParseGlob(filepath.Join(tplDir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		renderer:  issuetemplate.NewRenderer(issuetemplate.WithMarkdown(cfg.Converter())),
		templates: tpls,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s, nil
}

// ServeHTTP 实现 http.Handler。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.redirectLibrary)
	s.mux.HandleFunc("GET /healthz", s.health)

	s.mux.HandleFunc("GET /templates", s.showLibrary)
	s.mux.HandleFunc("GET /templates/{slug}", s.showTemplate)
	s.mux.HandleFunc("GET /templates/{slug}/fragment", s.showFragment)

	s.mux.HandleFunc("GET /editor", s.showEditor)
	s.mux.HandleFunc("POST /preview", s.previewSource)
}

func (s *Server) redirectLibrary(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/templates", http.StatusFound)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) showLibrary(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	items, total, err := s.buildEntryList(search)
	if err != nil {
		slog.Error("list templates", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Failed to load templates")
		return
	}

	s.renderTemplate(w, "library.tmpl", libraryTemplateData{
		Title:         "Issue Templates",
		Root:          s.store.Root(),
		Entries:       items,
		SearchTerm:    search,
		TotalEntries:  total,
		FilteredCount: len(items),
		HasFilter:     search != "",
	})
}

func (s *Server) showTemplate(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.renderPage(w, entry.Slug, string(content.RenderHTML(entry, s.renderer)), s.cfg.RefreshSeconds)
}

func (s *Server) showFragment(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeFragment(w, string(content.RenderHTML(entry, s.renderer)))
}

func (s *Server) showEditor(w http.ResponseWriter, r *http.Request) {
	data := editorTemplateData{Title: "Template Editor"}
	if slug := r.URL.Query().Get("slug"); slug != "" {
		if entry, err := s.store.Get(slug); err == nil {
			data.Title = fmt.Sprintf("Edit %s", entry.Slug)
			data.Content = entry.Raw
		}
	}
	s.renderTemplate(w, "editor.tmpl", data)
}

// previewSource 渲染编辑器提交的源文本，来自表单字段 "content" 或原始请求体。
func (s *Server) previewSource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)

	raw, err := readSource(r)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fragment := s.renderer.RenderSource(raw, issuetemplate.ParseYAML)
	if r.URL.Query().Get("fragment") == "1" || r.FormValue("fragment") == "1" {
		s.writeFragment(w, fragment)
		return
	}
	s.renderPage(w, "", fragment, 0)
}

func readSource(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxSourceBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return "", err
		}
		return r.FormValue("content"), nil
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (content.Entry, bool) {
	slug := r.PathValue("slug")
	entry, err := s.store.Get(slug)
	if err != nil {
		if errors.Is(err, content.ErrEntryNotFound) {
			s.renderError(w, http.StatusNotFound, "Not Found")
			return content.Entry{}, false
		}
		slog.Error("read template", "slug", slug, "error", err)
		s.renderError(w, http.StatusInternalServerError, "Failed to read template")
		return content.Entry{}, false
	}
	return entry, true
}

func (s *Server) buildEntryList(searchTerm string) ([]entryListItem, int, error) {
	entries, err := s.store.List()
	if err != nil {
		return nil, 0, err
	}

	total := len(entries)
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	items := make([]entryListItem, 0, total)
	for _, entry := range entries {
		if search != "" {
			if !strings.Contains(strings.ToLower(entry.Slug), search) &&
				!strings.Contains(strings.ToLower(entry.Raw), search) {
				continue
			}
		}
		sum := content.Summarize(entry)
		item := entryListItem{
			Slug:        entry.Slug,
			Name:        sum.Name,
			Description: summarize(sum.Description, 140),
			Fields:      sum.Fields,
			ModifiedAt:  formatTime(entry.ModifiedAt),
		}
		if sum.Err != nil {
			item.Error = sum.Err.Error()
		}
		items = append(items, item)
	}

	return items, total, nil
}

func summarize(raw string, limit int) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	return string(runes[:limit]) + "…"
}

func (s *Server) renderPage(w http.ResponseWriter, title, fragment string, refresh int) {
	if title != "" {
		title = fmt.Sprintf("%s · %s", title, preview.DefaultTitle)
	}
	page, err := preview.Page(fragment, preview.Options{Title: title, RefreshSeconds: refresh})
	if err != nil {
		slog.Error("render page", "error", err)
		http.Error(w, "Template Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

func (s *Server) writeFragment(w http.ResponseWriter, fragment string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, fragment)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Template Error", http.StatusInternalServerError)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
