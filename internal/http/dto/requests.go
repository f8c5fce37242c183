package dto

type TokenRequest struct {
	APIKey string `json:"api_key"`
	Email  string `json:"email"`
}

type ContentItemRequest struct {
	Title       string  `json:"title"`
	BodyHTML    string  `json:"body_html"`
	Destination *string `json:"destination,omitempty"`
	Season      *string `json:"season,omitempty"`
	Status      string  `json:"status,omitempty"`
}

type CaptionRequest struct {
	ContentItemID *string `json:"content_item_id,omitempty"`
	Text          string  `json:"text"`
	Hashtags      string  `json:"hashtags"`
	Platform      *string `json:"platform,omitempty"`
}

type ToolRequest struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Category    *string `json:"category,omitempty"`
}

type BatchRollbackRequest struct {
	EntryIDs []string `json:"entry_ids"`
}
