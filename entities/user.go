package entities

import (
	"time"
)

// User profile document. The document id is the Firebase Auth UID, so
// there is no separate foreign key back to the identity provider.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Role                string    `json:"role"` // donor, ngo or admin
	Phone               string    `json:"phone,omitempty"`
	Address             string    `json:"address,omitempty"`
	ProfileImage        string    `json:"profile_image,omitempty"`
	OrganizationName    string    `json:"organization_name,omitempty"`
	OrganizationDetails string    `json:"organization_details,omitempty"`
	EmailVerified       bool      `json:"email_verified"`
	CreatedAt           time.Time `json:"created_at"`
}
