package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/config"
	"github.com/rentdesk/agency-service/internal/handler"
	"github.com/rentdesk/agency-service/internal/integrations/indexval"
	"github.com/rentdesk/agency-service/internal/middleware"
	"github.com/rentdesk/agency-service/internal/repository"
	"github.com/rentdesk/agency-service/internal/scheduler"
	"github.com/rentdesk/agency-service/internal/service"
	"github.com/rentdesk/agency-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, sender, logger, cfg)
	h := handler.NewHandler(svc, logger)
	indexClient := indexval.NewClient(cfg, logger)

	// Scheduled jobs (generation and overdue sweep stay invokable over HTTP)
	if cfg.EnableScheduler {
		sched, err := scheduler.New(svc, logger)
		if err != nil {
			logger.Fatalf("Failed to set up scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Index-value endpoint for index-linked contracts
	r.HandleFunc("/index-value", func(w http.ResponseWriter, r *http.Request) {
		value, err := indexClient.GetIndexValue()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get index value: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"index_value": value})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/obligations", h.CreateObligation).Methods("POST")
	authRouter.HandleFunc("/obligations", h.ListObligations).Methods("GET")
	authRouter.HandleFunc("/obligations/{id:[0-9]+}", h.GetObligation).Methods("GET")
	authRouter.HandleFunc("/obligations/{id:[0-9]+}/payments", h.RegisterPayment).Methods("POST")
	authRouter.HandleFunc("/obligations/{id:[0-9]+}/payments", h.ListPayments).Methods("GET")
	authRouter.HandleFunc("/payments/{id:[0-9]+}/reverse", h.ReversePayment).Methods("POST")
	authRouter.HandleFunc("/templates", h.CreateTemplate).Methods("POST")
	authRouter.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	authRouter.HandleFunc("/templates/{id:[0-9]+}/deactivate", h.DeactivateTemplate).Methods("POST")
	authRouter.HandleFunc("/generate", h.GenerateForMonth).Methods("POST")
	authRouter.HandleFunc("/sweep-overdue", h.SweepOverdue).Methods("POST")
	authRouter.HandleFunc("/settlements/calculate", h.CalculateSettlement).Methods("POST")
	authRouter.HandleFunc("/settlements", h.ListSettlements).Methods("GET")
	authRouter.HandleFunc("/settlements/{id:[0-9]+}", h.GetSettlement).Methods("GET")
	authRouter.HandleFunc("/settlements/{id:[0-9]+}/settle", h.MarkSettlementSettled).Methods("POST")
	authRouter.HandleFunc("/settlements/{id:[0-9]+}/reopen", h.MarkSettlementPending).Methods("POST")
	authRouter.HandleFunc("/accounting-entries", h.ListEntries).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
