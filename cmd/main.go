package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jotter-notes/jotter/broker"
	"jotter-notes/jotter/config"
	"jotter-notes/jotter/database"
	"jotter-notes/jotter/middleware"
	"jotter-notes/jotter/routes"
	"jotter-notes/jotter/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The broker is optional: without it note events are simply not
	// published and the REST API keeps working.
	if err := broker.InitProducer(cfg.NatsURL); err != nil {
		log.Printf("Warning: Failed to initialize NATS producer: %v", err)
		log.Println("The application will continue, but note events will not be published")
	} else {
		defer broker.CloseProducer()
	}

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	noteService := services.NewNoteService()
	services.NoteServiceInstance = noteService

	trashService := services.NewTrashService(cfg.TrashRetentionDays)
	services.TrashServiceInstance = trashService
	trashService.Start(db, time.Duration(cfg.TrashSweepIntervalHours)*time.Hour)
	defer trashService.Stop()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	routes.RegisterUserRoutes(router, db, userService, authService)
	routes.RegisterWebSocketRoutes(router, cfg)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(authService))
	routes.RegisterProfileRoutes(protected, db, userService)
	routes.RegisterNoteRoutes(protected, db, noteService)
	routes.RegisterTrashRoutes(protected, db, trashService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		trashService.Stop()
		broker.CloseProducer()
		db.Close()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
