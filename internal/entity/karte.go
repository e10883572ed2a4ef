package entity

import "time"

// Stage tags carried in Karte.Status. The set is open-ended; only these three
// trigger notifications.
const (
	StageLight  = "light"
	StageMiddle = "middle"
	StageFull   = "full"
)

// UpdatedAtLayout is the ISO-8601 layout used for server-assigned timestamps.
const UpdatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Karte is the intake form of one LINE user, filled in three stages.
type Karte struct {
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UpdatedAt string `json:"updatedAt"`

	// Stage 1 (light)
	Prefecture     string  `json:"prefecture"`
	City           string  `json:"city"`
	MenuTarget     string  `json:"menuTarget"`
	MenuCategory   string  `json:"menuCategory"`
	MenuDetail     string  `json:"menuDetail"`
	HasOff         string  `json:"hasOff"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Scene          string  `json:"scene"`
	HospitalName   string  `json:"hospitalName"`
	Permission     string  `json:"permission"`

	// Stage 2 (middle)
	PreferredDate1 string `json:"preferredDate1"`
	PreferredDate2 string `json:"preferredDate2"`
	PreferredDate3 string `json:"preferredDate3"`

	// Stage 3 (full)
	FullName             string `json:"fullName"`
	Age                  string `json:"age"`
	EmergencyContact     string `json:"emergencyContact"`
	CancelPolicy         bool   `json:"cancelPolicy"`
	RoomNumber           string `json:"roomNumber"`
	VisitingInstructions string `json:"visitingInstructions"`
}

// KarteRecord is a Karte as stored, together with the id the store assigned.
type KarteRecord struct {
	ID    string
	Karte Karte
}

// Touch stamps the karte with the server time.
func (k *Karte) Touch(now time.Time) {
	k.UpdatedAt = now.UTC().Format(UpdatedAtLayout)
}

// IsKnownStage reports whether status names one of the notification stages.
func IsKnownStage(status string) bool {
	switch status {
	case StageLight, StageMiddle, StageFull:
		return true
	}
	return false
}
