package airtable

type record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields map[string]any `json:"fields"`
}
