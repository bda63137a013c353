package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tagirkamaev/to-do-v2/handlers"
	"github.com/tagirkamaev/to-do-v2/logging"
	"github.com/tagirkamaev/to-do-v2/middleware"
	"github.com/tagirkamaev/to-do-v2/services"
)

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Task Manager API...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded, relying on process environment: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set in the environment variables.")
	}
	if os.Getenv("JWT_SECRET") == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)

	statsBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "StatsAggregationCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	userService := services.NewUserService(db)
	taskService := services.NewTaskService(db)
	projectService := services.NewProjectService(db)
	statsService := services.NewStatsService(db, statsBreaker)

	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	projectHandler := handlers.NewProjectHandler(projectService, taskService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)

	protected.HandleFunc("/users/me", userHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", userHandler.UpdateProfile).Methods(http.MethodPut)

	protected.HandleFunc("/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/search", taskHandler.SearchTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	protected.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	protected.HandleFunc("/projects/search", projectHandler.SearchProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods(http.MethodPut)
	protected.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{id}/tasks", projectHandler.ProjectTasks).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectId}/tasks/{taskId}", projectHandler.AttachTask).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{projectId}/tasks/{taskId}", projectHandler.DetachTask).Methods(http.MethodDelete)

	protected.HandleFunc("/stats/user", statsHandler.UserStats).Methods(http.MethodGet)
	protected.HandleFunc("/stats/projects", statsHandler.ProjectStats).Methods(http.MethodGet)
	protected.HandleFunc("/stats/tasks/status", statsHandler.StatusDistribution).Methods(http.MethodGet)

	allowedOrigins := []string{"*"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	corsRouter := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(allowedOrigins),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
