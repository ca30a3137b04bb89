package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/folio/internal/auth"
	"github.com/Zachkp/folio/internal/blob"
	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/projects"
	"github.com/Zachkp/folio/internal/scroll"
)

//go:embed templates/*.html
var templatesFS embed.FS

// mailSender delivers contact form submissions.
type mailSender interface {
	Send(ctx context.Context, msg contact.Message) error
}

// site holds what the route handlers share.
type site struct {
	projects *projects.Store
	auth     *auth.Authenticator
	mailer   mailSender
	scroll   scroll.Config
	log      *slog.Logger
	ipSalt   string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := blob.Open(ctx, blob.Options{
		Driver:     cfg.Storage.Driver,
		Dir:        cfg.Storage.DataDir,
		SQLitePath: cfg.Storage.SQLitePath,
		Bucket:     cfg.Storage.GCSBucket,
	})
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close()

	authn, err := auth.New(auth.Config{
		Key:    cfg.Admin.Key,
		Secret: []byte(cfg.Admin.TokenSecret),
		TTL:    cfg.Admin.TokenTTL,
	})
	if err != nil {
		log.Fatalf("Failed to set up admin auth: %v", err)
	}
	if cfg.Admin.TokenSecret == "" {
		logger.Warn("ADMIN_TOKEN_SECRET not set; admin sessions will not survive a restart")
	}

	s := &site{
		projects: projects.NewStore(backend, cfg.Storage.ProjectsKey),
		auth:     authn,
		mailer:   contact.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.To),
		scroll: scroll.Config{
			Threshold: cfg.Scroll.Threshold,
			Lookahead: cfg.Scroll.Lookahead,
			Sections:  scroll.DefaultSections,
		},
		log:    logger,
		ipSalt: newSalt(),
	}

	r := newRouter(s)
	r.Static("/images", cfg.ImagesDir)
	r.Static("/static", cfg.StaticDir)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

func newRouter(s *site) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// Home page route
	r.GET("/", func(c *gin.Context) {
		list, err := s.projects.List(c.Request.Context())
		if err != nil {
			s.log.Error("loading projects for home page", "error", err)
		}
		c.HTML(http.StatusOK, "index.html", gin.H{
			"heroTagline":     HeroTagline,
			"aboutMeContent":  AboutMe,
			"skills":          Skills,
			"services":        Services,
			"projects":        list,
			"sections":        s.scroll.Sections,
			"scrollThreshold": s.scroll.Threshold,
			"scrollLookahead": s.scroll.Lookahead,
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public, read-only project list for the projects page
	r.GET("/api/projects", func(c *gin.Context) {
		list, err := s.projects.List(c.Request.Context())
		if err != nil {
			s.log.Error("reading projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read projects"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// Handle contact form submission with HTMX
	r.POST("/contact", func(c *gin.Context) {
		msg := contact.Message{
			Name:  c.PostForm("fullName"),
			Email: c.PostForm("email"),
			Body:  c.PostForm("message"),
		}

		if err := s.mailer.Send(c.Request.Context(), msg); err != nil {
			s.log.Error("sending contact email", "error", err, "client", s.hashIP(c.ClientIP()))
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "Sorry, there was an error sending your message. Please try again later.",
			})
			return
		}

		s.log.Info("contact email sent", "client", s.hashIP(c.ClientIP()))
		c.HTML(http.StatusOK, "contact-success.html", gin.H{
			"success": "Thank you for your message! I'll get back to you soon.",
		})
	})

	setupAdminRoutes(r, s)
	return r
}
