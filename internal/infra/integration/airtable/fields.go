package airtable

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/naileon/karte-api/internal/entity"
)

// Column names of the カルテ table. Only this file knows them.
const (
	ColumnUserID    = "LINE User ID"
	ColumnUpdatedAt = "最終更新日時"
)

type column struct {
	name string
	// identity columns are written on create only
	identity bool
	get      func(k *entity.Karte) any
	set      func(k *entity.Karte, v any)
}

var columns = []column{
	{name: ColumnUserID, identity: true,
		get: func(k *entity.Karte) any { return k.UserID },
		set: func(k *entity.Karte, v any) { k.UserID = asString(v) }},
	{name: "ステータス",
		get: func(k *entity.Karte) any { return k.Status },
		set: func(k *entity.Karte, v any) { k.Status = asString(v) }},
	{name: "登録日時", identity: true,
		get: func(k *entity.Karte) any { return k.Timestamp },
		set: func(k *entity.Karte, v any) { k.Timestamp = asString(v) }},
	{name: ColumnUpdatedAt,
		get: func(k *entity.Karte) any { return k.UpdatedAt },
		set: func(k *entity.Karte, v any) { k.UpdatedAt = asString(v) }},

	// ライトカルテ
	{name: "都道府県",
		get: func(k *entity.Karte) any { return k.Prefecture },
		set: func(k *entity.Karte, v any) { k.Prefecture = asString(v) }},
	{name: "市区町村",
		get: func(k *entity.Karte) any { return k.City },
		set: func(k *entity.Karte, v any) { k.City = asString(v) }},
	{name: "メニュー対象",
		get: func(k *entity.Karte) any { return k.MenuTarget },
		set: func(k *entity.Karte, v any) { k.MenuTarget = asString(v) }},
	{name: "メニューカテゴリ",
		get: func(k *entity.Karte) any { return k.MenuCategory },
		set: func(k *entity.Karte, v any) { k.MenuCategory = asString(v) }},
	{name: "メニュー詳細",
		get: func(k *entity.Karte) any { return k.MenuDetail },
		set: func(k *entity.Karte, v any) { k.MenuDetail = asString(v) }},
	{name: "オフ有無",
		get: func(k *entity.Karte) any { return k.HasOff },
		set: func(k *entity.Karte, v any) { k.HasOff = asString(v) }},
	{name: "参考料金",
		get: func(k *entity.Karte) any { return k.EstimatedPrice },
		set: func(k *entity.Karte, v any) { k.EstimatedPrice = asFloat(v) }},
	{name: "利用シーン",
		get: func(k *entity.Karte) any { return k.Scene },
		set: func(k *entity.Karte, v any) { k.Scene = asString(v) }},
	{name: "施設名",
		get: func(k *entity.Karte) any { return k.HospitalName },
		set: func(k *entity.Karte, v any) { k.HospitalName = asString(v) }},
	{name: "許可状況",
		get: func(k *entity.Karte) any { return k.Permission },
		set: func(k *entity.Karte, v any) { k.Permission = asString(v) }},

	// ミドルカルテ
	{name: "第1希望日時",
		get: func(k *entity.Karte) any { return k.PreferredDate1 },
		set: func(k *entity.Karte, v any) { k.PreferredDate1 = asString(v) }},
	{name: "第2希望日時",
		get: func(k *entity.Karte) any { return k.PreferredDate2 },
		set: func(k *entity.Karte, v any) { k.PreferredDate2 = asString(v) }},
	{name: "第3希望日時",
		get: func(k *entity.Karte) any { return k.PreferredDate3 },
		set: func(k *entity.Karte, v any) { k.PreferredDate3 = asString(v) }},

	// フルカルテ
	{name: "本名",
		get: func(k *entity.Karte) any { return k.FullName },
		set: func(k *entity.Karte, v any) { k.FullName = asString(v) }},
	{name: "年齢・年代",
		get: func(k *entity.Karte) any { return k.Age },
		set: func(k *entity.Karte, v any) { k.Age = asString(v) }},
	{name: "緊急連絡先",
		get: func(k *entity.Karte) any { return k.EmergencyContact },
		set: func(k *entity.Karte, v any) { k.EmergencyContact = asString(v) }},
	{name: "キャンセルポリシー同意",
		get: func(k *entity.Karte) any { return k.CancelPolicy },
		set: func(k *entity.Karte, v any) { k.CancelPolicy = asBool(v) }},
	{name: "病室番号",
		get: func(k *entity.Karte) any { return k.RoomNumber },
		set: func(k *entity.Karte, v any) { k.RoomNumber = asString(v) }},
	{name: "訪問時の注意事項",
		get: func(k *entity.Karte) any { return k.VisitingInstructions },
		set: func(k *entity.Karte, v any) { k.VisitingInstructions = asString(v) }},
}

// toFields maps a karte to Airtable columns. Identity columns are left out
// of updates so a record never changes owner or creation time.
func toFields(k *entity.Karte, withIdentity bool) map[string]any {
	fields := make(map[string]any, len(columns))
	for _, c := range columns {
		if c.identity && !withIdentity {
			continue
		}
		fields[c.name] = c.get(k)
	}
	return fields
}

// fromFields projects an Airtable record back to the logical shape. Airtable
// omits empty cells, which leave the zero value.
func fromFields(fields map[string]any) entity.Karte {
	var k entity.Karte
	for _, c := range columns {
		if v, ok := fields[c.name]; ok {
			c.set(&k, v)
		}
	}
	return k
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}
