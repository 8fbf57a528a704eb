package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/resumeflow/internal/services"
)

var (
	appServerInstance *services.AppServerFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleAppServer" is the entry point name configured in GCP.
	functions.HTTP("HandleAppServer", handleAppServer)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAppServer(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		appServerInstance, initErr = services.NewAppServerFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("App server initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	appServerInstance.ServeHTTP(w, r)
}
