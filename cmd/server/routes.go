package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"investnest.backend/internal/domain/entities"
	"investnest.backend/internal/interfaces/http/handlers"
	"investnest.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	verificationHandler *handlers.VerificationHandler
	adminHandler        *handlers.AdminHandler
	protect             gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/verify-email", d.authHandler.VerifyEmail)
			auth.POST("/resend-code", d.authHandler.ResendCode)
			auth.POST("/login", d.authHandler.Login)
			// Logout only clears the cookie, so it works without a valid session
			auth.GET("/logout", d.authHandler.Logout)

			auth.GET("/me", d.protect, d.authHandler.GetMe)
			auth.PUT("/profile", d.protect, d.authHandler.UpdateProfile)
			auth.POST("/role", d.protect, d.authHandler.ChooseRole)
			auth.DELETE("/me", d.protect, d.authHandler.DeleteMe)
		}

		// KYC routes (protected)
		verification := api.Group("/verification")
		verification.Use(d.protect)
		{
			verification.POST("", d.verificationHandler.Submit)
			verification.POST("/documents", d.verificationHandler.UploadDocuments)
			verification.GET("/status", d.verificationHandler.Status)
		}

		// Admin routes (protected, admin only)
		admin := api.Group("/admin")
		admin.Use(d.protect, middleware.Authorize(entities.RoleAdmin))
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.PATCH("/users/:id/verification-status", d.adminHandler.ReviewVerification)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "investnest-backend",
			"version": "0.1.0",
		})
	})
}
