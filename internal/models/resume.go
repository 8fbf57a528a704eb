package models

// NotAvailable is the placeholder rendered for any missing value.
const NotAvailable = "N/A"

// ResumeDetails is the structured record the generative model returns for a resume.
// Name and Email are required by the response schema.
type ResumeDetails struct {
	Name               string   `json:"name"`
	PhoneNumber        string   `json:"phone_number,omitempty"`
	Email              string   `json:"email"`
	Skills             []string `json:"skills,omitempty"`
	CompaniesWorkedFor []string `json:"companies_worked_for,omitempty"`
}

// Notification is a message ready to be published to subscribers.
type Notification struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Schema is a JSON response schema in the subset understood by the Gemini API.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// Schema type names.
const (
	SchemaObject = "object"
	SchemaString = "string"
	SchemaArray  = "array"
)

// ResumeSchema returns the fixed schema that constrains the model's reply to a
// ResumeDetails object. A fresh value is returned on every call.
func ResumeSchema() *Schema {
	stringList := func() *Schema {
		return &Schema{Type: SchemaArray, Items: &Schema{Type: SchemaString}}
	}
	return &Schema{
		Type: SchemaObject,
		Properties: map[string]*Schema{
			"name":                 {Type: SchemaString},
			"phone_number":         {Type: SchemaString},
			"email":                {Type: SchemaString},
			"skills":               stringList(),
			"companies_worked_for": stringList(),
		},
		Required: []string{"name", "email"},
	}
}
