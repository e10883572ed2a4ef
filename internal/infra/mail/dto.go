package mail

import "gopkg.in/gomail.v2"

type KarteCompletedData struct {
	UserID               string
	FullName             string
	Age                  string
	EmergencyContact     string
	Prefecture           string
	City                 string
	HospitalName         string
	RoomNumber           string
	Menu                 string
	EstimatedPrice       float64
	PreferredDates       []string
	VisitingInstructions string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	To     []string
	dialer dialer
}
