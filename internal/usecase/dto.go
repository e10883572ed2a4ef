package usecase

import "github.com/naileon/karte-api/internal/entity"

// KarteInput is the request body of POST and PUT /api/karte. It has no
// updatedAt; the server always sets it.
type KarteInput struct {
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`

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

	PreferredDate1 string `json:"preferredDate1"`
	PreferredDate2 string `json:"preferredDate2"`
	PreferredDate3 string `json:"preferredDate3"`

	FullName             string `json:"fullName"`
	Age                  string `json:"age"`
	EmergencyContact     string `json:"emergencyContact"`
	CancelPolicy         bool   `json:"cancelPolicy"`
	RoomNumber           string `json:"roomNumber"`
	VisitingInstructions string `json:"visitingInstructions"`
}

// toKarte normalizes the input into a full field set; omitted fields keep
// their zero value.
func (in KarteInput) toKarte(defaultStatus string) entity.Karte {
	status := in.Status
	if status == "" {
		status = defaultStatus
	}
	return entity.Karte{
		UserID:               in.UserID,
		Status:               status,
		Timestamp:            in.Timestamp,
		Prefecture:           in.Prefecture,
		City:                 in.City,
		MenuTarget:           in.MenuTarget,
		MenuCategory:         in.MenuCategory,
		MenuDetail:           in.MenuDetail,
		HasOff:               in.HasOff,
		EstimatedPrice:       in.EstimatedPrice,
		Scene:                in.Scene,
		HospitalName:         in.HospitalName,
		Permission:           in.Permission,
		PreferredDate1:       in.PreferredDate1,
		PreferredDate2:       in.PreferredDate2,
		PreferredDate3:       in.PreferredDate3,
		FullName:             in.FullName,
		Age:                  in.Age,
		EmergencyContact:     in.EmergencyContact,
		CancelPolicy:         in.CancelPolicy,
		RoomNumber:           in.RoomNumber,
		VisitingInstructions: in.VisitingInstructions,
	}
}

type UpsertKarteOutput struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Created bool   `json:"-"`
}

// KarteOutput is the logical projection returned by GET /api/karte/{userId}.
type KarteOutput struct {
	entity.Karte
	RecordID string `json:"recordId"`
}

type ReplaceKarteOutput struct {
	Success bool `json:"success"`
}
