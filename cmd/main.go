package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/lumiforge/adpilot-backend/docs"
	"github.com/lumiforge/adpilot-backend/internal/bootstrap"
)

func main() {
	ctx := context.Background()

	// Сборка приложения
	app, err := bootstrap.Initialize(ctx)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.DB.Close()

	// Запуск HTTP сервера
	port := app.Config.HTTPPort

	slog.Info("Starting HTTP server", "port", port)
	if err := http.ListenAndServe(":"+port, app.Router); err != nil {
		slog.Error("Failed to start HTTP server", "error", err)
		os.Exit(1)
	}
}
