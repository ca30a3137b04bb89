// admin.go - admin session handling and the project management API
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Zachkp/folio/internal/auth"
	"github.com/Zachkp/folio/internal/projects"
)

const adminCookie = "admin_token"

type loginRequest struct {
	Key string `json:"key" form:"key"`
}

func newSalt() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate IP hashing salt:", err)
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address so logs never hold raw client addresses
func (s *site) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.ipSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// bearerToken extracts the token from an Authorization header, if any.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// sessionToken returns the bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	token, _ := c.Cookie(adminCookie)
	return token
}

// fromForm reports whether the request came from the HTML login or logout form.
func fromForm(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEPOSTForm
}

// Middleware to check admin authentication
func (s *site) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.auth.Verify(sessionToken(c)); err != nil {
			s.log.Warn("rejected admin request", "path", c.Request.URL.Path, "client", s.hashIP(c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// Admin pages send unauthenticated browsers back to the login form
func (s *site) adminPageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.auth.Verify(sessionToken(c)); err != nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// writeProjectError maps store errors onto status codes. Storage causes are
// logged, never returned to the client.
func (s *site) writeProjectError(c *gin.Context, err error, failure string) {
	var validationErr *projects.ValidationError
	var notFoundErr *projects.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		s.log.Error(failure, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, s *site) {
	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	// Exchange the admin key for a short-lived session token. The HTML form
	// is redirected to the dashboard; API clients get the token as JSON.
	r.POST("/admin/login", func(c *gin.Context) {
		form := fromForm(c)
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		token, expiresAt, err := s.auth.Login(req.Key)
		if errors.Is(err, auth.ErrUnauthorized) {
			s.log.Warn("failed admin login attempt", "client", s.hashIP(c.ClientIP()))
			if form {
				c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err != nil {
			s.log.Error("issuing admin token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}

		maxAge := int(time.Until(expiresAt).Seconds())
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, token, maxAge, "/admin", "", c.Request.TLS != nil, true)
		s.log.Info("admin login successful", "client", s.hashIP(c.ClientIP()))
		if form {
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt})
	})

	// Admin logout
	r.POST("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
		s.log.Info("admin logout", "client", s.hashIP(c.ClientIP()))
		if fromForm(c) {
			c.Redirect(http.StatusFound, "/admin/login")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	// Admin dashboard
	r.GET("/admin/dashboard", s.adminPageMiddleware(), func(c *gin.Context) {
		list, err := s.projects.List(c.Request.Context())
		if err != nil {
			s.log.Error("loading dashboard projects", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-dashboard.html", gin.H{
				"error": "Failed to read projects",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"projects": list})
	})

	// Protected admin API group
	adminGroup := r.Group("/admin/api")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/projects", func(c *gin.Context) {
		list, err := s.projects.List(c.Request.Context())
		if err != nil {
			s.writeProjectError(c, err, "Failed to read projects")
			return
		}
		c.JSON(http.StatusOK, list)
	})

	adminGroup.POST("/projects", func(c *gin.Context) {
		var fields projects.Fields
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		p, err := s.projects.Create(c.Request.Context(), fields)
		if err != nil {
			s.writeProjectError(c, err, "Failed to add project")
			return
		}

		s.log.Info("project created", "id", p.ID, "client", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusCreated, p)
	})

	adminGroup.PUT("/projects/:id", func(c *gin.Context) {
		var fields projects.Fields
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		p, err := s.projects.Update(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			s.writeProjectError(c, err, "Failed to update project")
			return
		}

		s.log.Info("project updated", "id", p.ID, "client", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, p)
	})

	adminGroup.DELETE("/projects/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := s.projects.Delete(c.Request.Context(), id); err != nil {
			s.writeProjectError(c, err, "Failed to delete project")
			return
		}

		s.log.Info("project deleted", "id", id, "client", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}
