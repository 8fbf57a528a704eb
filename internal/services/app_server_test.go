package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lllllllleong/resumeflow/internal/gcp"
	"github.com/Lllllllleong/resumeflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	err         error
	key         string
	contentType string
	ttl         time.Duration
}

func (s *fakeSigner) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	s.key, s.contentType, s.ttl = key, contentType, ttl
	if s.err != nil {
		return "", s.err
	}
	return "https://storage.example.com/" + key + "?sig=abc", nil
}

type fakeJobs struct {
	roles []models.JobRole
	err   error
}

func (j *fakeJobs) List(ctx context.Context) ([]models.JobRole, error) {
	return j.roles, j.err
}

func (j *fakeJobs) Get(ctx context.Context, jobID string) (*models.JobRole, error) {
	if j.err != nil {
		return nil, j.err
	}
	for i := range j.roles {
		if j.roles[i].JobID == jobID {
			return &j.roles[i], nil
		}
	}
	return nil, gcp.ErrJobNotFound
}

func newTestAppServer(signer URLSigner, jobs JobRoleReader) *AppServerFunction {
	f := NewAppServer(AppServerConfig{UploadBucket: "resumes", UploadURLTTL: 90 * time.Second}, signer, jobs)
	f.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func serve(f *AppServerFunction, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestAppServer_PresignedURL(t *testing.T) {
	signer := &fakeSigner{}
	f := newTestAppServer(signer, &fakeJobs{})

	rec := serve(f, http.MethodGet, "/getPresignedUrl?jobId=backend-1&name=jane.pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body models.PresignedURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://storage.example.com/uploads/backend-1/jane.pdf?sig=abc", body.URL)
	assert.Equal(t, "uploads/backend-1/jane.pdf", signer.key)
	assert.Equal(t, "application/pdf", signer.contentType)
	assert.Equal(t, 90*time.Second, signer.ttl)
}

func TestAppServer_PresignedURLDefaults(t *testing.T) {
	signer := &fakeSigner{}
	f := newTestAppServer(signer, &fakeJobs{})

	rec := serve(f, http.MethodGet, "/getPresignedUrl")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uploads/unknown/1700000000000.pdf", signer.key)
}

func TestAppServer_PresignedURLSanitizesPath(t *testing.T) {
	signer := &fakeSigner{}
	f := newTestAppServer(signer, &fakeJobs{})

	rec := serve(f, http.MethodGet, "/getPresignedUrl?jobId=../../etc&name=../secret.pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uploads/etc/secret.pdf", signer.key)
}

func TestAppServer_PresignedURLError(t *testing.T) {
	f := newTestAppServer(&fakeSigner{err: errors.New("signing key unavailable")}, &fakeJobs{})

	rec := serve(f, http.MethodGet, "/getPresignedUrl?name=a.pdf")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"signing key unavailable"}`, rec.Body.String())
}

func TestAppServer_JobRoles(t *testing.T) {
	jobs := &fakeJobs{roles: []models.JobRole{
		{JobID: "backend-1", Title: "Backend Engineer", Description: "Go services"},
		{JobID: "data-2", Title: "Data Engineer", Description: "Pipelines"},
	}}
	f := newTestAppServer(&fakeSigner{}, jobs)

	rec := serve(f, http.MethodGet, "/getJobRoles")
	require.Equal(t, http.StatusOK, rec.Code)

	var roles []models.JobRoleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	require.Len(t, roles, 2)
	assert.Equal(t, "backend-1", roles[0].ID)
	assert.Equal(t, "Backend Engineer", roles[0].Title)

	rec = serve(f, http.MethodGet, "/jobs/data-2")
	require.Equal(t, http.StatusOK, rec.Code)
	var role models.JobRoleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &role))
	assert.Equal(t, "Data Engineer", role.Title)

	rec = serve(f, http.MethodGet, "/jobs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Job not found"}`, rec.Body.String())
}

func TestAppServer_EmptyCatalogue(t *testing.T) {
	f := newTestAppServer(&fakeSigner{}, &fakeJobs{})

	rec := serve(f, http.MethodGet, "/getJobRoles")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAppServer_StoreError(t *testing.T) {
	f := newTestAppServer(&fakeSigner{}, &fakeJobs{err: errors.New("deadline exceeded")})

	assert.Equal(t, http.StatusInternalServerError, serve(f, http.MethodGet, "/getJobRoles").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(f, http.MethodGet, "/jobs/x").Code)
}

func TestAppServer_InvalidRoute(t *testing.T) {
	f := newTestAppServer(&fakeSigner{}, &fakeJobs{})

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/getJobRoles"},
		{http.MethodDelete, "/jobs/backend-1"},
	} {
		rec := serve(f, tc.method, tc.target)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.target)
		assert.JSONEq(t, `{"error":"Invalid route or method"}`, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestUploadKey(t *testing.T) {
	assert.Equal(t, "uploads/backend-1/cv.pdf", UploadKey("backend-1", "cv.pdf"))
	assert.Equal(t, "uploads/unknown/cv.pdf", UploadKey("", "cv.pdf"))
	assert.Equal(t, "uploads/unknown/cv.pdf", UploadKey("..", "a/b/cv.pdf"))
}
