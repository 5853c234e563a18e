package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/app"
	"pypln-web/internal/properties"
	"pypln-web/internal/transport/http/response"
	"pypln-web/internal/visualization"
)

// writeError maps service errors onto the response envelope. Anything it
// does not recognise is a 500 carrying fallback, never the raw error.
func writeError(c *gin.Context, err error, fallback string) {
	var (
		verr *app.ValidationError
		pnf  *app.PropertyNotFoundError
	)
	switch {
	case errors.As(err, &verr):
		response.Invalid(c, verr.Fields)
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrCorpusNameTaken):
		response.Error(c, http.StatusBadRequest, response.CodeCorpusNameTaken, err.Error())
	case errors.Is(err, app.ErrInvalidIndexName):
		response.Invalid(c, map[string][]string{"index_name": {err.Error()}})
	case errors.Is(err, app.ErrCorpusNotOwned), errors.Is(err, errBadCorpusRef):
		response.Invalid(c, map[string][]string{"corpus": {err.Error()}})
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
	case errors.Is(err, app.ErrCorpusNotFound):
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
	case errors.Is(err, app.ErrVisualizationUnavailable), errors.Is(err, properties.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeAnalysisUnavailable, err.Error())
	case errors.As(err, &pnf), errors.Is(err, app.ErrVisualizationNotReady), errors.Is(err, app.ErrFreqDistNotReady):
		response.Error(c, http.StatusNotFound, response.CodeNotReady, err.Error())
	case errors.Is(err, visualization.ErrUnknownVisualization), errors.Is(err, visualization.ErrFormatNotSupported),
		errors.Is(err, app.ErrInvalidPage), errors.Is(err, app.ErrEmptyPage):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
