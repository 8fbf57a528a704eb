package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/resumeflow/internal/models"
	"github.com/Lllllllleong/resumeflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// maxEventBytes bounds the size of an HTTP-delivered event.
const maxEventBytes = 1 << 20

var (
	processorInstance *services.ResumeProcessorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// The storage trigger delivers CloudEvents; the HTTP entry point accepts the
	// same event body for direct invocation and replays.
	functions.CloudEvent("ProcessResume", processResume)
	functions.HTTP("HandleProcessResume", handleProcessResume)
}

// main is required by the Go Functions Framework.
func main() {}

func instance() (*services.ResumeProcessorFunction, error) {
	once.Do(func() {
		processorInstance, initErr = services.NewResumeProcessorFromEnv(context.Background())
	})
	return processorInstance, initErr
}

// processResume is the CloudEvent entry point. Malformed events are acknowledged
// so they are not redelivered; fetch and extraction failures are returned so the
// trigger may retry.
func processResume(ctx context.Context, e cloudevents.Event) error {
	f, err := instance()
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		return err
	}

	res := f.Process(ctx, e.Data())
	switch {
	case res.StatusCode == http.StatusBadRequest:
		slog.Warn("Dropping malformed event.", "eventId", e.ID(), "eventType", e.Type())
		return nil
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("event %s: %s", e.ID(), res.Body)
	}
	return nil
}

// handleProcessResume is the HTTP entry point. It answers with the
// {statusCode, body} outcome and mirrors statusCode as the HTTP status.
func handleProcessResume(w http.ResponseWriter, r *http.Request) {
	f, err := instance()
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		slog.Error("Could not read request body", "error", err)
		writeResponse(w, &models.ProcessResponse{StatusCode: http.StatusBadRequest, Body: services.BodyInvalidEvent})
		return
	}
	writeResponse(w, f.Process(r.Context(), data))
}

func writeResponse(w http.ResponseWriter, res *models.ProcessResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
