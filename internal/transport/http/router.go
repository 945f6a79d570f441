package http

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/ttsgen/docs" // registers the OpenAPI document
)

//go:embed templates/*.html
var templates embed.FS

// multipartMemory is how much of a form gin keeps in memory before spilling
// file parts to disk.
const multipartMemory = 8 << 20

func (t *Transport) router() (*gin.Engine, error) {
	if t.opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware())
	engine.MaxMultipartMemory = multipartMemory

	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)

	engine.Use(static.Serve("/output", static.LocalFile(t.opts.OutputDir, false)))

	engine.GET("/", t.handleIndex)
	engine.POST("/generate", t.limitBody(), t.handleGenerate)
	engine.GET("/models", t.handleModels)
	engine.GET("/speakers/*model", t.handleSpeakers)
	engine.GET("/test/*model", t.handleTest)
	if t.opts.Artifacts != nil {
		engine.GET("/artifacts/:name", t.handleArtifact)
	}
	engine.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)))

	return engine, nil
}

// limitBody caps the request body at the upload limit plus room for the
// text fields.
func (t *Transport) limitBody() gin.HandlerFunc {
	const formOverhead = 1 << 20

	return func(c *gin.Context) {
		if t.opts.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, t.opts.MaxUploadBytes+formOverhead)
		}
		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
