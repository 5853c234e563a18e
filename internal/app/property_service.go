package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pypln-web/internal/model"
	"pypln-web/internal/properties"
)

// PropertyNotFoundError reports a property the pipeline has not produced
// for a document.
type PropertyNotFoundError struct {
	Property string
	Document string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("Property '%s' does not exist for document %s.", e.Property, e.Document)
}

// PropertyService exposes the analysis results of a user's documents.
type PropertyService struct {
	docs   *DocumentService
	opener properties.Opener
}

func NewPropertyService(docs *DocumentService, opener properties.Opener) *PropertyService {
	return &PropertyService{docs: docs, opener: opener}
}

// List returns the names of the available properties. A document the
// pipeline has not reported on yet yields a properties.NotFoundError.
func (s *PropertyService) List(ctx context.Context, docID, ownerID uint) (*model.Document, []string, error) {
	doc, props, err := s.proxy(docID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	keys, err := props.Keys(ctx)
	if err != nil {
		return doc, nil, err
	}
	return doc, keys, nil
}

func (s *PropertyService) Get(ctx context.Context, docID, ownerID uint, name string) (json.RawMessage, error) {
	doc, props, err := s.proxy(docID, ownerID)
	if err != nil {
		return nil, err
	}
	value, err := props.Get(ctx, name)
	if errors.Is(err, properties.ErrNotFound) {
		return nil, &PropertyNotFoundError{Property: name, Document: doc.Blob}
	}
	return value, err
}

func (s *PropertyService) proxy(docID, ownerID uint) (*model.Document, *properties.Proxy, error) {
	doc, err := s.docs.Get(docID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	props, err := doc.Properties(s.opener)
	if err != nil {
		return nil, nil, err
	}
	return doc, props, nil
}
