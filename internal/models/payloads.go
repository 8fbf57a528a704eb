package models

// These structs define the JSON payloads exchanged with the trigger infrastructure
// and with the browser-facing app server.

// S3Event is the notification envelope delivered when an object lands in the
// upload bucket. Only the fields the pipeline reads are declared; any
// other fields are ignored whatever their shape.
type S3Event struct {
	Records []S3EventRecord `json:"Records"`
}

// S3EventRecord is a single entry of an S3Event.
type S3EventRecord struct {
	S3 S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

// S3Object carries the object key exactly as delivered, still percent-encoded.
type S3Object struct {
	Key string `json:"key"`
}

// ObjectReference identifies a stored document. Key is already decoded.
type ObjectReference struct {
	Bucket string
	Key    string
}

// ProcessResponse is the terminal outcome of one pipeline invocation.
type ProcessResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// PresignedURLResponse is returned by the app server's upload URL endpoint.
type PresignedURLResponse struct {
	URL string `json:"url"`
}

// JobRoleResponse is the public view of a JobRole.
type JobRoleResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ErrorResponse is the body of a failed app server call.
type ErrorResponse struct {
	Error string `json:"error,omitempty"`
	// Message is used for lookups that found nothing.
	Message string `json:"message,omitempty"`
}
