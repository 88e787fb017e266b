package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageNames = []string{"home", "connect", "sync", "webhooks", "customer_order", "login"}

// Banner is the status message shown above a page
type Banner struct {
	Kind    string
	Title   string
	Message string
}

func successBanner(title, message string) *Banner {
	return &Banner{Kind: "success", Title: title, Message: message}
}

func errorBanner(title, message string) *Banner {
	return &Banner{Kind: "error", Title: title, Message: message}
}

type formField struct {
	Name  string
	Label string
	Type  string
}

// pageData is the view model shared by the admin pages
type pageData struct {
	Title    string
	APIKey   string
	Embedded bool
	Shop     string
	Banner   *Banner
	// IDToken authenticates the page's form posts
	IDToken  string

	ShopName    string
	Linked      bool
	MainAppURL  string
	RegisterURL string
	StoreConfig map[string]any
	SyncStatus  string
	SyncID      string
	Topics      []string
	Fields      []formField
	LoginShop   string
	Error       string
}

type renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// newRenderer parses the layout once per page from the embedded templates
func newRenderer(logger zerolog.Logger) (*renderer, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(sub, "layout.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &renderer{pages: pages, logger: logger}, nil
}

func (rd *renderer) render(w http.ResponseWriter, status int, page string, data *pageData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error().Str("page", page).Msg("Unknown template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error().Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
