package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-password/password"
	"gopkg.in/natefinch/lumberjack.v2"

	"daybook/config"
	"daybook/handlers"
	"daybook/internal/database"
	diarysvc "daybook/services/diary"
	"daybook/services/recommend"
	settingssvc "daybook/services/settings"
	summarysvc "daybook/services/summary"
	userssvc "daybook/services/users"
	"daybook/utils"
)

func main() {
	configPath := flag.String("config", "daybook.json", "path to the settings file")
	flag.Parse()

	settings, err := loadSettings(*configPath)
	if err != nil {
		log.Fatalf("[main] settings: %v", err)
	}

	if settings.LogPath != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.LogPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.DatabasePath})
	if err != nil {
		log.Fatalf("[main] database: %v", err)
	}
	defer db.Close()

	conn := db.Connection()

	users := userssvc.NewService(conn)
	userSettings := settingssvc.NewService(conn)
	diary := diarysvc.NewService(conn)
	summaries := summarysvc.NewService(conn, diary)
	recommender := recommend.NewService(settings.Ollama)
	defer recommender.Close()

	tokens := utils.NewTokenIssuer(settings.Auth.JWTSecret,
		time.Duration(settings.Auth.SessionTTLMinutes)*time.Minute)

	auth := handlers.NewAuthHandler(users, userSettings, summaries, tokens)
	diaryHandler := handlers.NewDiaryHandler(diary)
	summaryHandler := handlers.NewSummaryHandler(diary, summaries, recommender)
	settingsHandler := handlers.NewSettingsHandler(userSettings)

	router := utils.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(handlers.AuthMiddleware(tokens))
	protected.HandleFunc("/diary/entries", diaryHandler.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/diary/entries", diaryHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/summary", summaryHandler.Month).Methods(http.MethodGet)
	protected.HandleFunc("/summary/months", summaryHandler.ListAll).Methods(http.MethodGet)
	protected.HandleFunc("/summary/generate", summaryHandler.Generate).Methods(http.MethodPost)
	protected.HandleFunc("/summary/recommendation", summaryHandler.Recommendation).Methods(http.MethodGet)
	protected.HandleFunc("/settings/timer", settingsHandler.GetTimer).Methods(http.MethodGet)
	protected.HandleFunc("/settings/timer", settingsHandler.SetTimer).Methods(http.MethodPut)

	server := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// The recommendation endpoint waits on the local model, which can
		// take most of a minute on slow hardware.
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

// loadSettings reads the settings file, creating it with defaults on first
// run. A missing JWT secret is generated and persisted so sessions survive
// restarts.
func loadSettings(path string) (config.Settings, error) {
	manager := config.NewManager(path)

	exists, err := manager.Exists()
	if err != nil {
		return config.Settings{}, err
	}

	var settings config.Settings
	if exists {
		settings, err = manager.Load()
		if err != nil {
			return config.Settings{}, err
		}
	} else {
		settings = config.DefaultSettings()
		log.Printf("[main] creating default settings file at %s", path)
	}

	if settings.Auth.JWTSecret == "" {
		secret, err := password.Generate(48, 10, 0, false, true)
		if err != nil {
			return config.Settings{}, err
		}
		settings.Auth.JWTSecret = secret
		if err := manager.Save(settings); err != nil {
			return config.Settings{}, err
		}
	} else if !exists {
		if err := manager.Save(settings); err != nil {
			return config.Settings{}, err
		}
	}

	return settings, nil
}
