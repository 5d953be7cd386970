// Package partner defines partner organisations shown on the public site.
package partner

import "time"

// Partner is a partner logo entry.
type Partner struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
