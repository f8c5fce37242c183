package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection names known to the record store. This is the closed set the
// rollback registry is built from.
const (
	CollectionContentItems = "content_items"
	CollectionCaptions     = "captions"
	CollectionTools        = "tools"
)

// ContentItem is one reusable travel template in the content library.
type ContentItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Excerpt     string    `json:"excerpt"`
	Destination *string   `json:"destination,omitempty"`
	Season      *string   `json:"season,omitempty"`
	Status      string    `json:"status"` // draft/published/archived
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot captures every field explicitly, including empty and nil values.
// Snapshots feed the mutation log, and a restore must write absent values
// back as absent, so nothing here may be omitted.
func (i *ContentItem) Snapshot() Snapshot {
	return Snapshot{
		"id":          i.ID,
		"title":       i.Title,
		"body_html":   i.BodyHTML,
		"excerpt":     i.Excerpt,
		"destination": i.Destination,
		"season":      i.Season,
		"status":      i.Status,
		"created_at":  i.CreatedAt,
	}
}

// Caption is a ready-to-post social caption, optionally tied to a template.
type Caption struct {
	ID            uuid.UUID  `json:"id"`
	ContentItemID *uuid.UUID `json:"content_item_id,omitempty"`
	Text          string     `json:"text"`
	Hashtags      string     `json:"hashtags"`
	Platform      *string    `json:"platform,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (c *Caption) Snapshot() Snapshot {
	return Snapshot{
		"id":              c.ID,
		"content_item_id": c.ContentItemID,
		"text":            c.Text,
		"hashtags":        c.Hashtags,
		"platform":        c.Platform,
		"created_at":      c.CreatedAt,
	}
}

// Tool is a recommended resource (booking site, packing app, map) surfaced
// alongside templates.
type Tool struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Tool) Snapshot() Snapshot {
	return Snapshot{
		"id":          t.ID,
		"name":        t.Name,
		"url":         t.URL,
		"description": t.Description,
		"category":    t.Category,
		"created_at":  t.CreatedAt,
	}
}
