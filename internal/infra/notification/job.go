package notification

import "github.com/naileon/karte-api/internal/entity"

// Job is one notification to deliver after a karte write. It is also the
// message body on the notification queue.
type Job struct {
	UserID string       `json:"user_id"`
	Stage  string       `json:"stage"`
	Karte  entity.Karte `json:"karte"`
}
