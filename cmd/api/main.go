package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"medication-reminders/internal/adapters/auth/vesta"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	appLog := logger.NewFromEnv()

	// Con VESTA_* configurado se valida contra el IAM real; sin eso el
	// servicio corre en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("VESTA_BASE_URL"); baseURL != "" {
		client, err := vesta.NewClient(vesta.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("VESTA_API_KEY"),
		})
		if err != nil {
			log.Fatalf("vesta client: %v", err)
		}
		verifier = vesta.NewVerifier(client)
		appLog.Info("vesta verifier enabled", nil)
	} else {
		appLog.Warn("running in dev auth mode (X-Debug-User-ID)", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Log:          appLog,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
