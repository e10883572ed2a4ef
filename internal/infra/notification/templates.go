package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/naileon/karte-api/internal/entity"
)

const (
	TemplateStage1Received = "stage-1-received"
	TemplateStage2Received = "stage-2-received"
	TemplateStage3Complete = "stage-3-complete"
)

var stageTemplates = map[string]string{
	entity.StageLight:  TemplateStage1Received,
	entity.StageMiddle: TemplateStage2Received,
	entity.StageFull:   TemplateStage3Complete,
}

var messages = template.Must(template.New("messages").
	Funcs(template.FuncMap{"yen": formatYen}).
	Parse(`
{{- define "stage-1-received" -}}
✨ カルテ（基本情報）を受付けました!

参考料金: ¥{{yen .Karte.EstimatedPrice}}

次のステップで希望日時をお聞かせください。
{{- end}}
{{- define "stage-2-received" -}}
📅 希望日時を受付けました!

ネイリストを調整中です。
通常1-2時間以内にご連絡いたします 💅
{{- end}}
{{- define "stage-3-complete" -}}
🎉 カルテ登録が完了しました!

ネイリストとの調整を進めております。
確定次第ご連絡いたします 💅
{{- end}}`))

// TemplateFor returns the template key of a stage, or "" for statuses that
// do not notify.
func TemplateFor(stage string) string {
	return stageTemplates[stage]
}

// Render builds the push text for a job. ok is false when the stage has no
// template or the template renders empty.
func Render(job Job) (text string, ok bool, err error) {
	key := TemplateFor(job.Stage)
	if key == "" {
		return "", false, nil
	}

	var buf bytes.Buffer
	if err := messages.ExecuteTemplate(&buf, key, job); err != nil {
		return "", false, fmt.Errorf("render %s: %w", key, err)
	}
	return buf.String(), buf.Len() > 0, nil
}

func formatYen(v float64) string {
	return message.NewPrinter(language.Japanese).Sprintf("%v", number.Decimal(v))
}
