package handler

import (
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/app"
	"pypln-web/internal/transport/http/middleware"
	"pypln-web/internal/visualization"
)

// WebHandler serves the HTML pages. Authentication uses the same JWT as
// the API, carried in a cookie.
type WebHandler struct {
	auth           *app.AuthService
	corpora        *app.CorpusService
	documents      *app.DocumentService
	visualizations *app.VisualizationService
	search         *app.SearchService
	cookieName     string
	secureCookie   bool
}

func NewWebHandler(
	auth *app.AuthService,
	corpora *app.CorpusService,
	documents *app.DocumentService,
	visualizations *app.VisualizationService,
	search *app.SearchService,
	cookieName string,
	secureCookie bool,
) *WebHandler {
	return &WebHandler{
		auth:           auth,
		corpora:        corpora,
		documents:      documents,
		visualizations: visualizations,
		search:         search,
		cookieName:     cookieName,
		secureCookie:   secureCookie,
	}
}

func (h *WebHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Username"] = c.GetString(middleware.ContextUsernameKey)
	c.HTML(status, name, data)
}

func (h *WebHandler) notFound(c *gin.Context, message string) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{"Status": http.StatusNotFound, "Message": message})
}

// fail renders the error page for a service error.
func (h *WebHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrDocumentNotFound):
		h.notFound(c, "No Document matches the given query.")
	case errors.Is(err, app.ErrCorpusNotFound):
		h.notFound(c, "No Corpus matches the given query.")
	case errors.Is(err, app.ErrInvalidPage), errors.Is(err, app.ErrEmptyPage),
		errors.Is(err, app.ErrVisualizationUnavailable), errors.Is(err, app.ErrVisualizationNotReady),
		errors.Is(err, visualization.ErrFormatNotSupported):
		h.notFound(c, err.Error())
	default:
		_ = c.Error(err)
		h.render(c, http.StatusInternalServerError, "error.html", gin.H{
			"Status":  http.StatusInternalServerError,
			"Message": "Something went wrong.",
		})
	}
}

func (h *WebHandler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *WebHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Next": safeNext(c.Query("next"))})
}

func (h *WebHandler) Login(c *gin.Context) {
	next := safeNext(c.PostForm("next"))
	result, err := h.auth.Login(app.LoginInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) || errors.Is(err, app.ErrInvalidInput) {
			h.render(c, http.StatusOK, "login.html", gin.H{
				"Next":  next,
				"Error": "Please enter a correct username and password.",
			})
			return
		}
		h.fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, result.Token, int(time.Until(result.ExpiresAt).Seconds()), "/", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *WebHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// safeNext only follows local paths after login.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/corpora"
	}
	return next
}

func (h *WebHandler) Corpora(c *gin.Context) {
	h.corporaPage(c, http.StatusOK, nil, app.CorpusInput{})
}

func (h *WebHandler) corporaPage(c *gin.Context, status int, errs map[string][]string, input app.CorpusInput) {
	userID, _ := middleware.UserID(c)
	corpora, err := h.corpora.List(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, status, "corpora.html", gin.H{
		"Corpora": corpora,
		"Form":    input,
		"Errors":  errs,
	})
}

func (h *WebHandler) CreateCorpus(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.auth.GetUserByID(userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	input := app.CorpusInput{Name: c.PostForm("name"), Description: c.PostForm("description")}
	form := h.corpora.NewCorpusForm(user, input)
	if !form.IsValid() {
		h.corporaPage(c, http.StatusOK, form.Errors(), input)
		return
	}
	corpus, err := form.Save()
	if errors.Is(err, app.ErrCorpusNameTaken) {
		h.corporaPage(c, http.StatusOK, form.Errors(), input)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/corpora/%d", corpus.ID))
}

// CorpusPage lists the documents of one corpus and hosts the upload form.
func (h *WebHandler) CorpusPage(c *gin.Context) {
	h.corpusPage(c, http.StatusOK, nil)
}

func (h *WebHandler) corpusPage(c *gin.Context, status int, errs map[string][]string) {
	id, ok := parseID(c, "id")
	if !ok {
		h.notFound(c, "No Corpus matches the given query.")
		return
	}
	userID, _ := middleware.UserID(c)
	corpus, err := h.corpora.Get(id, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.documents.List(userID, app.ListQuery{
		CorpusID: &corpus.ID,
		Sort:     c.Query("sort_by"),
		Page:     c.DefaultQuery("page", app.FirstPage),
		PerPage:  c.Query("per_page"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	uploaded, _ := strconv.Atoi(c.Query("uploaded"))
	h.render(c, status, "corpus.html", gin.H{
		"Corpus":   corpus,
		"Page":     page,
		"Errors":   errs,
		"Uploaded": uploaded,
	})
}

// Upload stores every file of the multipart field "blob" in the corpus.
func (h *WebHandler) Upload(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.notFound(c, "No Corpus matches the given query.")
		return
	}
	userID, _ := middleware.UserID(c)
	user, err := h.auth.GetUserByID(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	corpus, err := h.corpora.Get(id, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	var uploads []app.Upload
	if mf, err := c.MultipartForm(); err == nil {
		for _, fh := range mf.File["blob"] {
			uploads = append(uploads, fileUpload(fh))
		}
	}

	form := h.documents.NewDocumentForm(user, &corpus.ID, uploads)
	if !form.IsValid() {
		h.corpusPage(c, http.StatusOK, form.Errors())
		return
	}
	docs, err := form.Save(c.Request.Context(), true)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/corpora/%d?uploaded=%d", corpus.ID, len(docs)))
}

func (h *WebHandler) Documents(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	page, err := h.documents.List(userID, app.ListQuery{
		Sort:    c.Query("sort_by"),
		Page:    c.DefaultQuery("page", app.FirstPage),
		PerPage: c.Query("per_page"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "documents.html", gin.H{"Page": page})
}

func (h *WebHandler) Document(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.notFound(c, "No Document matches the given query.")
		return
	}
	userID, _ := middleware.UserID(c)
	details, err := h.visualizations.Details(c.Request.Context(), id, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	corpora, err := h.corpora.List(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "document.html", gin.H{
		"Details": details,
		"Corpora": corpora,
	})
}

func (h *WebHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.notFound(c, "No Document matches the given query.")
		return
	}
	userID, _ := middleware.UserID(c)
	file, err := h.documents.Download(c.Request.Context(), id, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Visualization serves /documents/:id/visualization/:file where file is
// "{slug}.{format}".
func (h *WebHandler) Visualization(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.notFound(c, "No Document matches the given query.")
		return
	}
	file := c.Param("file")
	dot := strings.LastIndex(file, ".")
	if dot <= 0 || dot == len(file)-1 {
		h.notFound(c, fmt.Sprintf("Visualization %s not found", file))
		return
	}
	slug, format := file[:dot], file[dot+1:]

	userID, _ := middleware.UserID(c)
	out, err := h.visualizations.Render(c.Request.Context(), id, userID, slug, format)
	if errors.Is(err, visualization.ErrUnknownVisualization) {
		h.notFound(c, fmt.Sprintf("Visualization %s not found", slug))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if out.Filename == "" {
		h.render(c, http.StatusOK, "visualization.html", gin.H{
			"DocumentID": id,
			"Content":    template.HTML(out.Body),
		})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

func (h *WebHandler) Search(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	query := strings.TrimSpace(c.Query("query"))
	corpusID, err := parseCorpusRef(c.Query("corpus"))
	if err != nil {
		h.notFound(c, "No Corpus matches the given query.")
		return
	}

	results, err := h.search.Search(userID, corpusID, query)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{"Query": query, "Results": results}
	if corpusID != nil {
		corpus, err := h.corpora.Get(*corpusID, userID)
		if err != nil {
			h.fail(c, err)
			return
		}
		data["Corpus"] = corpus
	}
	h.render(c, http.StatusOK, "search.html", data)
}
