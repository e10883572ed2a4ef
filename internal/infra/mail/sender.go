package mail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/naileon/karte-api/internal/entity"
)

const karteCompletedBody = `フルカルテの登録が完了しました。ネイリストの手配をお願いします。

LINE User ID: {{.UserID}}
お名前: {{.FullName}} ({{.Age}})
緊急連絡先: {{.EmergencyContact}}
場所: {{.Prefecture}} {{.City}} {{.HospitalName}} {{.RoomNumber}}
メニュー: {{.Menu}}
参考料金: ¥{{printf "%.0f" .EstimatedPrice}}
希望日時:
{{range $i, $d := .PreferredDates}}  第{{inc $i}}希望: {{$d}}
{{end}}訪問時の注意事項: {{.VisitingInstructions}}
`

var karteCompletedTmpl = template.Must(template.New("karte_completed").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(karteCompletedBody))

func NewEmailSender(host string, port int, user, password, from string, to []string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// SendKarteCompleted tells the staff mailbox that a karte reached the full stage.
func (s *EmailSender) SendKarteCompleted(k entity.Karte) error {
	body, err := renderKarteCompleted(newKarteCompletedData(k))
	if err != nil {
		return err
	}

	name := k.FullName
	if name == "" {
		name = k.UserID
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To...)
	m.SetHeader("Subject", fmt.Sprintf("【カルテ完了】%s 様", name))
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send staff mail: %w", err)
	}
	return nil
}

func newKarteCompletedData(k entity.Karte) KarteCompletedData {
	var dates []string
	for _, d := range []string{k.PreferredDate1, k.PreferredDate2, k.PreferredDate3} {
		if d != "" {
			dates = append(dates, d)
		}
	}
	menu := strings.TrimSpace(strings.Join([]string{k.MenuTarget, k.MenuCategory, k.MenuDetail}, " "))

	return KarteCompletedData{
		UserID:               k.UserID,
		FullName:             k.FullName,
		Age:                  k.Age,
		EmergencyContact:     k.EmergencyContact,
		Prefecture:           k.Prefecture,
		City:                 k.City,
		HospitalName:         k.HospitalName,
		RoomNumber:           k.RoomNumber,
		Menu:                 menu,
		EstimatedPrice:       k.EstimatedPrice,
		PreferredDates:       dates,
		VisitingInstructions: k.VisitingInstructions,
	}
}

func renderKarteCompleted(data KarteCompletedData) (string, error) {
	var body bytes.Buffer
	if err := karteCompletedTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render staff mail: %w", err)
	}
	return body.String(), nil
}
