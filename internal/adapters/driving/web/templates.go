package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

//go:embed templates/*.html
var embedded embed.FS

// layoutFile is parsed together with every page template.
const layoutFile = "layout.html"

// templates holds one parsed template set per page.
type templates struct {
	mu     sync.RWMutex
	src    fs.FS
	pages  map[string]*template.Template
	policy *bluemonday.Policy

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// loadTemplates parses the pages in dir, or the embedded pages when dir is empty.
func loadTemplates(dir string) (*templates, error) {
	var src fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		src = sub
	} else {
		src = os.DirFS(dir)
	}

	t := &templates{src: src, policy: bluemonday.UGCPolicy()}
	if err := t.parse(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *templates) parse() error {
	names, err := fs.Glob(t.src, "*.html")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		tmpl, err := template.New(name).Funcs(t.funcs()).ParseFS(t.src, layoutFile, name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = tmpl
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	t.mu.Lock()
	t.pages = pages
	t.mu.Unlock()
	return nil
}

func (t *templates) funcs() template.FuncMap {
	return template.FuncMap{
		"waiverHTML": func(s string) template.HTML {
			// Plain text keeps its line breaks.
			if !strings.Contains(s, "<") {
				s = strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")
			}
			return template.HTML(t.policy.Sanitize(s)) //nolint:gosec // sanitised above
		},
		"date": func(tm time.Time) string {
			if tm.IsZero() {
				return ""
			}
			return tm.Format("2 Jan 2006")
		},
		"datetime": func(tm time.Time) string {
			return tm.Format("2 Jan 2006 15:04")
		},
		"inputDate": inputDate,
		"inputType": inputType,
		"safeURL": func(dataURI string) template.URL {
			if _, err := domain.ParseImageDataURI(dataURI); err != nil {
				return ""
			}
			return template.URL(dataURI) //nolint:gosec // validated image data URI
		},
		"groupTitle": func(g domain.FieldGroup) string {
			return domain.FieldLabel(string(g))
		},
		"styleName": func(s domain.SignatureStyle) string {
			return domain.FieldLabel(string(s))
		},
	}
}

// render executes a page into w. The page is buffered so a template error
// does not leave a half-written response.
func (t *templates) render(w io.Writer, name string, data any) error {
	t.mu.RLock()
	tmpl, ok := t.pages[name]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// watch re-parses the templates whenever a file in dir changes. A failed
// re-parse keeps the previous set.
func (t *templates) watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	t.watcher = watcher
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".html" || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := t.parse(); err != nil {
					logger.Warn("template reload failed: %v", err)
					continue
				}
				logger.Info("templates reloaded after change to %s", filepath.Base(event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("template watcher: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher, if any.
func (t *templates) Close() error {
	if t.watcher == nil {
		return nil
	}
	err := t.watcher.Close()
	<-t.done
	t.watcher = nil
	return err
}

// inputDate formats a time or optional time for a datetime-local input.
func inputDate(v any) string {
	var tm time.Time
	switch t := v.(type) {
	case time.Time:
		tm = t
	case *time.Time:
		if t == nil {
			return ""
		}
		tm = *t
	}
	if tm.IsZero() {
		return ""
	}
	return tm.Format(inputDateLayout)
}

func inputType(k domain.FieldKind) string {
	switch k {
	case domain.FieldKindDate:
		return "date"
	case domain.FieldKindCheckbox:
		return "checkbox"
	case domain.FieldKindSelect:
		return "select"
	default:
		return "text"
	}
}
