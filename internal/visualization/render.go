package visualization

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFiles embed.FS

var funcs = map[string]any{
	"csv":      csvField,
	"language": LanguageName,
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.csv", "templates/*.txt"))
)

// Rendered is a finished visualization body.
type Rendered struct {
	ContentType string
	Filename    string
	Body        []byte
}

// ContentType returns the media type served for format.
func ContentType(format string) string {
	switch format {
	case "html":
		return "text/html; charset=utf-8"
	case "txt":
		return "text/plain; charset=utf-8"
	default:
		return "text/" + format + "; charset=utf-8"
	}
}

// Render executes the template of v for format. documentID names the
// attachment for non-HTML formats.
func Render(v *Visualization, format string, documentID uint, data map[string]any) (*Rendered, error) {
	if !v.Supports(format) {
		return nil, fmt.Errorf("%w: %s.%s", ErrFormatNotSupported, v.Slug, format)
	}

	name := v.Slug + "." + format
	ctx := map[string]any{
		"Visualization": v,
		"DocumentID":    documentID,
		"Data":          data,
	}

	var buf bytes.Buffer
	if format == "html" {
		if htmlTemplates.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, name)
		}
		if err := htmlTemplates.ExecuteTemplate(&buf, name, ctx); err != nil {
			return nil, fmt.Errorf("render %s failed: %w", name, err)
		}
		return &Rendered{ContentType: ContentType(format), Body: buf.Bytes()}, nil
	}

	if textTemplates.Lookup(name) == nil {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, name)
	}
	if err := textTemplates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return nil, fmt.Errorf("render %s failed: %w", name, err)
	}
	return &Rendered{
		ContentType: ContentType(format),
		Filename:    fmt.Sprintf("%d-%s.%s", documentID, v.Slug, format),
		Body:        buf.Bytes(),
	}, nil
}

// csvField quotes a value the way encoding/csv would in a record.
func csvField(v any) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{fmt.Sprint(v)})
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}
