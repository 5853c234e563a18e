package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/app"
	"pypln-web/internal/transport/http/middleware"
	"pypln-web/internal/transport/http/response"
)

type DocumentHandler struct {
	auth       *AuthHandler
	documents  *app.DocumentService
	properties *app.PropertyService
}

type DocumentUpdateRequest struct {
	Corpus string `json:"corpus" form:"corpus"`
}

func NewDocumentHandler(auth *AuthHandler, documents *app.DocumentService, properties *app.PropertyService) *DocumentHandler {
	return &DocumentHandler{auth: auth, documents: documents, properties: properties}
}

func fileUpload(fh *multipart.FileHeader) app.Upload {
	return app.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	corpusID, err := parseCorpusRef(c.Query("corpus"))
	if err != nil {
		writeError(c, err, "list documents failed")
		return
	}
	docs, err := h.documents.All(userID, corpusID, c.Query("sort_by"))
	if err != nil {
		writeError(c, err, "list documents failed")
		return
	}
	out := make([]gin.H, 0, len(docs))
	for i := range docs {
		out = append(out, documentJSON(c, &docs[i]))
	}
	response.OK(c, out)
}

// Create uploads one document from the multipart field "blob".
func (h *DocumentHandler) Create(c *gin.Context) {
	fh, err := c.FormFile("blob")
	if err != nil {
		response.Invalid(c, map[string][]string{"blob": {"No file was submitted."}})
		return
	}
	corpusID, err := parseCorpusRef(c.PostForm("corpus"))
	if err != nil {
		writeError(c, err, "create document failed")
		return
	}

	userID, _ := middleware.UserID(c)
	doc, err := h.documents.Create(c.Request.Context(), userID, corpusID, fileUpload(fh))
	if err != nil {
		writeError(c, err, "create document failed")
		return
	}
	response.JSON(c, http.StatusCreated, documentJSON(c, doc))
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	doc, err := h.documents.Get(id, userID)
	if err != nil {
		writeError(c, err, "get document failed")
		return
	}
	response.OK(c, documentJSON(c, doc))
}

// Update moves the document between corpora. The blob cannot be replaced.
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
		return
	}
	var req DocumentUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	corpusID, err := parseCorpusRef(req.Corpus)
	if err != nil {
		writeError(c, err, "update document failed")
		return
	}

	userID, _ := middleware.UserID(c)
	doc, err := h.documents.Update(id, userID, corpusID)
	if err != nil {
		writeError(c, err, "update document failed")
		return
	}
	response.OK(c, documentJSON(c, doc))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.documents.Delete(c.Request.Context(), id, userID); err != nil {
		writeError(c, err, "delete document failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Properties lists the analysis results available so far.
func (h *DocumentHandler) Properties(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	_, keys, err := h.properties.List(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err, "list properties failed")
		return
	}
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		urls = append(urls, documentURL(c, id)+"properties/"+k+"/")
	}
	response.OK(c, gin.H{"properties": urls})
}

// Property returns one analysis result as {"value": ...}.
func (h *DocumentHandler) Property(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Not found")
		return
	}
	userID, _ := middleware.UserID(c)
	value, err := h.properties.Get(c.Request.Context(), id, userID, c.Param("name"))
	if err != nil {
		writeError(c, err, "get property failed")
		return
	}
	response.OK(c, gin.H{"value": value})
}

// IndexDocument uploads a document to be indexed under index_name, which
// must start with the caller's username.
func (h *DocumentHandler) IndexDocument(c *gin.Context) {
	user, ok := h.auth.currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("blob")
	if err != nil {
		response.Invalid(c, map[string][]string{"blob": {"No file was submitted."}})
		return
	}
	corpusID, err := parseCorpusRef(c.PostForm("corpus"))
	if err != nil {
		writeError(c, err, "index document failed")
		return
	}

	doc, err := h.documents.CreateIndexed(c.Request.Context(), user, app.IndexInput{
		CorpusID:  corpusID,
		IndexName: c.PostForm("index_name"),
		DocType:   c.PostForm("doc_type"),
		File:      fileUpload(fh),
	})
	if err != nil {
		writeError(c, err, "index document failed")
		return
	}
	response.JSON(c, http.StatusCreated, documentJSON(c, doc))
}
