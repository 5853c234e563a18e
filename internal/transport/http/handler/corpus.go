package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/app"
	"pypln-web/internal/transport/http/middleware"
	"pypln-web/internal/transport/http/response"
)

type CorpusHandler struct {
	corpusService *app.CorpusService
}

type CorpusRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func NewCorpusHandler(corpusService *app.CorpusService) *CorpusHandler {
	return &CorpusHandler{corpusService: corpusService}
}

func (h *CorpusHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	corpora, err := h.corpusService.List(userID)
	if err != nil {
		writeError(c, err, "list corpora failed")
		return
	}

	out := make([]gin.H, 0, len(corpora))
	for i := range corpora {
		docs, err := h.corpusService.Documents(&corpora[i])
		if err != nil {
			writeError(c, err, "list corpora failed")
			return
		}
		out = append(out, corpusJSON(c, &corpora[i], docs))
	}
	response.OK(c, out)
}

func (h *CorpusHandler) Create(c *gin.Context) {
	var req CorpusRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	userID, _ := middleware.UserID(c)
	corpus, err := h.corpusService.Create(userID, app.CorpusInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, err, "create corpus failed")
		return
	}
	response.JSON(c, http.StatusCreated, corpusJSON(c, corpus, nil))
}

func (h *CorpusHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	corpus, err := h.corpusService.Get(id, userID)
	if err != nil {
		writeError(c, err, "get corpus failed")
		return
	}
	docs, err := h.corpusService.Documents(corpus)
	if err != nil {
		writeError(c, err, "get corpus failed")
		return
	}
	response.OK(c, corpusJSON(c, corpus, docs))
}

func (h *CorpusHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
		return
	}
	var req CorpusRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	userID, _ := middleware.UserID(c)
	corpus, err := h.corpusService.Update(id, userID, app.CorpusInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, err, "update corpus failed")
		return
	}
	docs, err := h.corpusService.Documents(corpus)
	if err != nil {
		writeError(c, err, "update corpus failed")
		return
	}
	response.OK(c, corpusJSON(c, corpus, docs))
}

func (h *CorpusHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.corpusService.Delete(id, userID); err != nil {
		writeError(c, err, "delete corpus failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// FreqDist returns the frequency distribution aggregated over the corpus.
func (h *CorpusHandler) FreqDist(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	value, err := h.corpusService.FreqDist(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err, "get corpus freqdist failed")
		return
	}
	response.OK(c, gin.H{"corpus": corpusURL(c, id), "value": value})
}

// RequestFreqDist queues a new aggregation. The result shows up in FreqDist
// once the pipeline is done.
func (h *CorpusHandler) RequestFreqDist(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeCorpusNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.corpusService.RequestFreqDist(c.Request.Context(), id, userID); err != nil {
		writeError(c, err, "request corpus freqdist failed")
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"corpus": corpusURL(c, id)})
}
