package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pypln-web/internal/mail"
	"pypln-web/internal/model"
	"pypln-web/internal/properties"
	"pypln-web/internal/visualization"
)

var (
	ErrVisualizationUnavailable = errors.New("Visualization not found for this document.")
	ErrVisualizationNotReady    = errors.New("Visualization not ready for this document. This means that the necessary processing is not finished or that an error has occured.")
)

// VisualizationService renders documents from the properties the pipeline
// stored for them.
type VisualizationService struct {
	docs   *DocumentService
	opener properties.Opener
	mailer mail.AdminMailer
}

func NewVisualizationService(docs *DocumentService, opener properties.Opener, mailer mail.AdminMailer) *VisualizationService {
	return &VisualizationService{docs: docs, opener: opener, mailer: mailer}
}

// Render produces one visualization of a document. Every failure to find
// something maps to a distinct error: unknown slug or format, unknown
// document, no analysis at all, or analysis still missing requirements.
func (s *VisualizationService) Render(ctx context.Context, docID, ownerID uint, slug, format string) (*visualization.Rendered, error) {
	v, err := visualization.Lookup(slug)
	if err != nil {
		return nil, err
	}
	if !v.Supports(format) {
		return nil, fmt.Errorf("%w: %s.%s", visualization.ErrFormatNotSupported, slug, format)
	}

	doc, err := s.docs.Get(docID, ownerID)
	if err != nil {
		return nil, err
	}
	props, err := doc.Properties(s.opener)
	if err != nil {
		return nil, err
	}

	available, err := props.Keys(ctx)
	if errors.Is(err, properties.ErrNotFound) {
		return nil, ErrVisualizationUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !v.Ready(available) {
		return nil, ErrVisualizationNotReady
	}

	data := make(map[string]json.RawMessage, len(v.Requires))
	for _, key := range v.Requires {
		raw, err := props.Get(ctx, key)
		if errors.Is(err, properties.ErrNotFound) {
			return nil, ErrVisualizationNotReady
		}
		if err != nil {
			return nil, err
		}
		data[key] = raw
	}

	processed, err := v.Process(ctx, visualization.Input{Data: data, Mailer: s.mailer})
	if err != nil {
		return nil, fmt.Errorf("process visualization %s failed: %w", slug, err)
	}
	return visualization.Render(v, format, doc.ID, processed)
}

// DocumentDetails is what the document page shows about the analysis.
type DocumentDetails struct {
	Document       *model.Document
	Metadata       map[string]any
	Language       string
	MimeType       string
	Visualizations []*visualization.Visualization
}

// Details collects the metadata and the ready visualizations of a
// document. Missing analysis results leave the fields empty.
func (s *VisualizationService) Details(ctx context.Context, docID, ownerID uint) (*DocumentDetails, error) {
	doc, err := s.docs.Get(docID, ownerID)
	if err != nil {
		return nil, err
	}
	props, err := doc.Properties(s.opener)
	if err != nil {
		return nil, err
	}

	details := &DocumentDetails{Document: doc, Metadata: map[string]any{}}

	available, err := props.Keys(ctx)
	if err != nil && !errors.Is(err, properties.ErrNotFound) {
		return nil, err
	}
	details.Visualizations = visualization.Available(available)

	if err := optional(props.Decode(ctx, "file_metadata", &details.Metadata)); err != nil {
		return nil, err
	}
	if details.Metadata == nil {
		details.Metadata = map[string]any{}
	}
	var language string
	if err := optional(props.Decode(ctx, "language", &language)); err != nil {
		return nil, err
	}
	details.Language = visualization.LanguageName(language)
	if err := optional(props.Decode(ctx, "mimetype", &details.MimeType)); err != nil {
		return nil, err
	}
	return details, nil
}

func optional(err error) error {
	if errors.Is(err, properties.ErrNotFound) {
		return nil
	}
	return err
}
