package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/resumeflow/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrJobNotFound is returned by JobRoleStore.Get for unknown job IDs.
var ErrJobNotFound = errors.New("job role not found")

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// JobRoleStore reads job roles from a Firestore collection.
type JobRoleStore struct {
	client     *firestore.Client
	collection string
}

func NewJobRoleStore(client *firestore.Client, collection string) *JobRoleStore {
	return &JobRoleStore{client: client, collection: collection}
}

// List returns every job role in the collection. Documents without a jobId
// field fall back to their document ID.
func (s *JobRoleStore) List(ctx context.Context) ([]models.JobRole, error) {
	it := s.client.Collection(s.collection).Documents(ctx)
	defer it.Stop()

	var roles []models.JobRole
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list job roles: %w", err)
		}
		var role models.JobRole
		if err := doc.DataTo(&role); err != nil {
			return nil, fmt.Errorf("failed to decode job role %s: %w", doc.Ref.ID, err)
		}
		if role.JobID == "" {
			role.JobID = doc.Ref.ID
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// Get returns a single job role by ID.
func (s *JobRoleStore) Get(ctx context.Context, jobID string) (*models.JobRole, error) {
	if jobID == "" {
		return nil, ErrJobNotFound
	}
	doc, err := s.client.Collection(s.collection).Doc(jobID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job role %s: %w", jobID, err)
	}
	var role models.JobRole
	if err := doc.DataTo(&role); err != nil {
		return nil, fmt.Errorf("failed to decode job role %s: %w", jobID, err)
	}
	if role.JobID == "" {
		role.JobID = doc.Ref.ID
	}
	return &role, nil
}
