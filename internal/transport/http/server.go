package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appsvc "pypln-web/internal/app"
	"pypln-web/internal/bootstrap"
	"pypln-web/internal/config"
	"pypln-web/internal/transport/http/handler"
	"pypln-web/internal/transport/http/middleware"
	"pypln-web/web"
)

type Services struct {
	Auth           *appsvc.AuthService
	Corpora        *appsvc.CorpusService
	Documents      *appsvc.DocumentService
	Properties     *appsvc.PropertyService
	Visualizations *appsvc.VisualizationService
	Search         *appsvc.SearchService
}

func NewServices(app *bootstrap.App) *Services {
	documents := appsvc.NewDocumentService(
		app.Documents,
		app.Corpora,
		app.Storage,
		app.Properties,
		app.Pipeline,
		[]appsvc.DocumentHook{app.Pipeline},
		app.Log,
	)
	return &Services{
		Auth: appsvc.NewAuthService(
			app.Users,
			app.Config.Auth.JWTSecret,
			time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		),
		Corpora:        appsvc.NewCorpusService(app.Corpora, app.Documents, app.Properties, app.Pipeline),
		Documents:      documents,
		Properties:     appsvc.NewPropertyService(documents, app.Properties),
		Visualizations: appsvc.NewVisualizationService(documents, app.Properties, app.Mailer),
		Search:         appsvc.NewSearchService(app.Documents, app.Corpora, app.Index),
	}
}

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()

	metrics, err := middleware.NewMetrics(app.Metrics)
	if err != nil {
		return nil, err
	}
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Log), metrics.Handler(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{})))

	Register(router, NewServices(app), app.Config.Auth, app.Config.App.Env == "prod")
	return router, nil
}

// Register mounts the JSON API under /api/v1 and the HTML pages at the root.
func Register(router *gin.Engine, s *Services, auth config.AuthConfig, secureCookie bool) {
	router.SetHTMLTemplate(web.Templates())

	authHandler := handler.NewAuthHandler(s.Auth)
	corpusHandler := handler.NewCorpusHandler(s.Corpora)
	documentHandler := handler.NewDocumentHandler(authHandler, s.Documents, s.Properties)
	webHandler := handler.NewWebHandler(s.Auth, s.Corpora, s.Documents, s.Visualizations, s.Search, auth.CookieName, secureCookie)

	apiAuth := middleware.AuthJWT(auth.JWTSecret, auth.CookieName)

	v1 := router.Group("/api/v1")
	v1.GET("/", handler.APIRoot)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", apiAuth, authHandler.Me)

	corpora := v1.Group("/corpora", apiAuth)
	corpora.GET("/", corpusHandler.List)
	corpora.POST("/", corpusHandler.Create)
	corpora.GET("/:id/", corpusHandler.Get)
	corpora.PUT("/:id/", corpusHandler.Update)
	corpora.DELETE("/:id/", corpusHandler.Delete)
	corpora.GET("/:id/freqdist/", corpusHandler.FreqDist)
	corpora.PUT("/:id/freqdist/", corpusHandler.RequestFreqDist)

	documents := v1.Group("/documents", apiAuth)
	documents.GET("/", documentHandler.List)
	documents.POST("/", documentHandler.Create)
	documents.GET("/:id/", documentHandler.Get)
	documents.PUT("/:id/", documentHandler.Update)
	documents.DELETE("/:id/", documentHandler.Delete)
	documents.GET("/:id/properties/", documentHandler.Properties)
	documents.GET("/:id/properties/:name/", documentHandler.Property)

	v1.POST("/index-document/", apiAuth, documentHandler.IndexDocument)

	optional := middleware.OptionalAuth(auth.JWTSecret, auth.CookieName)
	router.GET("/", optional, webHandler.Home)
	router.GET("/login", optional, webHandler.LoginPage)
	router.POST("/login", webHandler.Login)
	router.POST("/logout", webHandler.Logout)

	pages := router.Group("", middleware.LoginRequired(auth.JWTSecret, auth.CookieName))
	pages.GET("/corpora", webHandler.Corpora)
	pages.POST("/corpora", webHandler.CreateCorpus)
	pages.GET("/corpora/:id", webHandler.CorpusPage)
	pages.POST("/corpora/:id", webHandler.Upload)
	pages.GET("/documents", webHandler.Documents)
	pages.GET("/documents/:id", webHandler.Document)
	pages.GET("/documents/:id/download", webHandler.Download)
	pages.GET("/documents/:id/visualization/:file", webHandler.Visualization)
	pages.GET("/search", webHandler.Search)
}
