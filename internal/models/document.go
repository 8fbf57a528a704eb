package models

// JobRole represents an open position in Firestore. Candidates upload their
// resume against a job ID, which becomes part of the object key.
type JobRole struct {
	JobID       string `firestore:"jobId,omitempty"`
	Title       string `firestore:"title,omitempty"`
	Description string `firestore:"description,omitempty"`
}

// Response converts the stored record to its JSON view.
func (j JobRole) Response() JobRoleResponse {
	return JobRoleResponse{ID: j.JobID, Title: j.Title, Description: j.Description}
}
