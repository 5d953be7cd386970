// Package news defines published articles and their categories.
package news

import "time"

// Article is a news item authored by the back office.
type Article struct {
	ID        string    `json:"_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
