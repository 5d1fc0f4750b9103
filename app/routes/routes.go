package routes

import (
	"io/fs"
	"net/http"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/services"
	"postboard/app/views"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(sessions *services.SessionService) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	pageController := controllers.NewPageController(sessions)

	// Serve static files
	static, _ := fs.Sub(views.Static, "static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Web routes
	router.HandleFunc("/", pageController.Show).Methods("GET")
	router.HandleFunc("/", pageController.Submit).Methods("POST")
	router.HandleFunc("/healthz", pageController.Health).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts/{id}/toggle", pageController.Toggle).Methods("POST")
	api.HandleFunc("/state", pageController.State).Methods("GET")

	return router
}
