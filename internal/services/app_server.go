package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/resumeflow/internal/gcp"
	"github.com/Lllllllleong/resumeflow/internal/models"
	"github.com/Lllllllleong/resumeflow/internal/objectstore"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// UploadPrefix is the folder every browser upload lands in.
const UploadPrefix = "uploads"

// URLSigner issues time-limited upload URLs.
type URLSigner interface {
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

// JobRoleReader reads the job role catalogue.
type JobRoleReader interface {
	List(ctx context.Context) ([]models.JobRole, error)
	Get(ctx context.Context, jobID string) (*models.JobRole, error)
}

// AppServerConfig holds configuration for the browser-facing app server.
type AppServerConfig struct {
	ProjectID      string
	StorageBackend string
	UploadBucket   string
	UploadURLTTL   time.Duration
	JobCollection  string
	MinIO          objectstore.MinIOConfig
}

// LoadAppServerConfig loads and validates the app server's environment.
func LoadAppServerConfig() (*AppServerConfig, error) {
	_ = godotenv.Load()

	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	uploadBucket := gcp.GetEnv("UPLOAD_BUCKET", "")
	if uploadBucket == "" {
		return nil, fmt.Errorf("UPLOAD_BUCKET environment variable must be set")
	}
	ttl, err := time.ParseDuration(gcp.GetEnv("UPLOAD_URL_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_URL_TTL: %w", err)
	}

	config := &AppServerConfig{
		ProjectID:      projectID,
		StorageBackend: strings.ToLower(gcp.GetEnv("STORAGE_BACKEND", StorageGCS)),
		UploadBucket:   uploadBucket,
		UploadURLTTL:   ttl,
		JobCollection:  gcp.GetEnv("JOB_COLLECTION", "jobs"),
		MinIO: objectstore.MinIOConfig{
			Endpoint:  gcp.GetEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: gcp.GetEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: gcp.GetEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    gcp.GetEnv("MINIO_USE_SSL", "false") == "true",
			Region:    gcp.GetEnv("MINIO_REGION", ""),
		},
	}
	if config.StorageBackend != StorageGCS && config.StorageBackend != StorageMinIO {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", config.StorageBackend)
	}
	return config, nil
}

// AppServerFunction serves upload URLs and the job role catalogue.
type AppServerFunction struct {
	signer  URLSigner
	jobs    JobRoleReader
	config  AppServerConfig
	router  chi.Router
	now     func() time.Time
	closers []io.Closer
}

// NewAppServer wires the routes around the given collaborators.
func NewAppServer(config AppServerConfig, signer URLSigner, jobs JobRoleReader) *AppServerFunction {
	if config.UploadURLTTL <= 0 {
		config.UploadURLTTL = time.Minute
	}
	f := &AppServerFunction{
		signer: signer,
		jobs:   jobs,
		config: config,
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(allowAllOrigins)
	r.Get("/getPresignedUrl", f.handlePresignedURL)
	r.Get("/getJobRoles", f.handleListJobRoles)
	r.Get("/jobs/{jobId}", f.handleGetJobRole)
	r.NotFound(handleInvalidRoute)
	r.MethodNotAllowed(handleInvalidRoute)
	f.router = r
	return f
}

// NewAppServerFromEnv loads configuration and connects Firestore and the object store.
func NewAppServerFromEnv(ctx context.Context) (*AppServerFunction, error) {
	config, err := LoadAppServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{firestoreClient}

	var signer URLSigner
	switch config.StorageBackend {
	case StorageMinIO:
		client, err := objectstore.NewMinIOClient(config.MinIO)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
		signer = objectstore.NewMinIOURLSigner(client, config.UploadBucket)
	default:
		client, err := storage.NewClient(ctx)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		closers = append(closers, client)
		signer = gcp.NewGCSURLSigner(client, config.UploadBucket)
	}

	f := NewAppServer(*config, signer, gcp.NewJobRoleStore(firestoreClient, config.JobCollection))
	f.closers = closers
	slog.Info("App server initialized.", "uploadBucket", config.UploadBucket, "jobCollection", config.JobCollection)
	return f, nil
}

// Close releases the clients opened by NewAppServerFromEnv.
func (f *AppServerFunction) Close() {
	closeAll(f.closers)
	f.closers = nil
}

func (f *AppServerFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.router.ServeHTTP(w, r)
}

// UploadKey builds the object key for an uploaded resume. Only the final path
// element of each input is kept.
func UploadKey(jobID, fileName string) string {
	return path.Join(UploadPrefix, safeSegment(jobID, "unknown"), safeSegment(fileName, ""))
}

func safeSegment(s, fallback string) string {
	s = path.Base(strings.TrimSpace(s))
	if s == "." || s == "/" || s == ".." {
		return fallback
	}
	return s
}

func (f *AppServerFunction) handlePresignedURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fileName := safeSegment(q.Get("name"), "")
	if fileName == "" {
		fileName = strconv.FormatInt(f.now().UnixMilli(), 10) + ".pdf"
	}
	key := UploadKey(q.Get("jobId"), fileName)

	url, err := f.signer.SignedUploadURL(r.Context(), key, "application/pdf", f.config.UploadURLTTL)
	if err != nil {
		slog.Error("Error generating presigned URL.", "key", key, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	slog.Info("Issued upload URL.", "key", key)
	writeJSON(w, http.StatusOK, models.PresignedURLResponse{URL: url})
}

func (f *AppServerFunction) handleListJobRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := f.jobs.List(r.Context())
	if err != nil {
		slog.Error("Error fetching job roles.", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]models.JobRoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, role.Response())
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *AppServerFunction) handleGetJobRole(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	role, err := f.jobs.Get(r.Context(), jobID)
	if errors.Is(err, gcp.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Message: "Job not found"})
		return
	}
	if err != nil {
		slog.Error("Error fetching job.", "jobId", jobID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, role.Response())
}

func handleInvalidRoute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Invalid route or method"})
}

func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}
