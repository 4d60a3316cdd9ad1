package crud

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

var recordTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func ToCoach(rec models.Record) models.Coach {
	price := floatField(rec, "sijiajiage", "jiage", "price")
	if price <= 0 {
		price = models.DefaultCoachPrice
	}
	return models.Coach{
		ID:          int64Field(rec, "id"),
		Name:        stringField(rec, "jiaolianxingming", "name"),
		Bio:         stringField(rec, "gerenjianjie", "jiaolianjianjie", "bio", "description"),
		Price:       price,
		Specialties: listField(rec, "shanchang", "specialties", "tags"),
		AvatarURL:   stringField(rec, "touxiang", "avatar"),
	}
}

func ToPost(rec models.Record) models.Post {
	return models.Post{
		ID:         int64Field(rec, "id"),
		Title:      stringField(rec, "title", "biaoti"),
		Tags:       listField(rec, "biaoqian", "tags"),
		ReplyCount: int(int64Field(rec, "huifushu", "replyCount", "reply_count")),
		LikeCount:  int(int64Field(rec, "thumbsupnum", "dianzanshu", "likeCount", "like_count")),
		ViewCount:  int(int64Field(rec, "clicknum", "viewCount", "view_count")),
		CreatedAt:  timeField(rec, "addtime", "createdAt", "created_at"),
	}
}

func ToBooking(kind models.BookingKind, rec models.Record) models.Booking {
	labelKeys := []string{"kechengmingcheng", "kechengming", "label"}
	if kind == models.BookingKindPrivate {
		labelKeys = []string{"jiaolianxingming", "jiaolianzhanghao", "label"}
	}
	return models.Booking{
		ID:      int64Field(rec, "id"),
		Kind:    kind,
		Account: stringField(rec, "yonghuzhanghao", "account"),
		Date:    strings.TrimSpace(stringField(rec, "yuyueriqi", "date")),
		Time:    strings.TrimSpace(stringField(rec, "yuyueshijian", "time")),
		Label:   stringField(rec, labelKeys...),
	}
}

func ToPaymentOrder(rec models.Record) models.PaymentOrder {
	return models.PaymentOrder{
		ID:      int64Field(rec, "id"),
		OrderNo: stringField(rec, "dingdanbianhao", "orderNo"),
		Account: stringField(rec, "yonghuzhanghao", "account"),
		Amount:  floatField(rec, "zongjine", "amount", "price"),
		Status:  paymentStatus(stringField(rec, "zhuangtai", "ispay", "status")),
	}
}

func paymentStatus(raw string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "已支付", "paid", "success":
		return models.PaymentPaid
	case "已取消", "支付失败", "failed", "cancelled", "canceled":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

func stringField(rec models.Record, keys ...string) string {
	for _, key := range keys {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func floatField(rec models.Record, keys ...string) float64 {
	for _, key := range keys {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		var (
			f      float64
			parsed bool
		)
		switch v := value.(type) {
		case float64:
			f, parsed = v, true
		case float32:
			f, parsed = float64(v), true
		case int:
			f, parsed = float64(v), true
		case int64:
			f, parsed = float64(v), true
		case json.Number:
			n, err := v.Float64()
			f, parsed = n, err == nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			f, parsed = n, err == nil
		}
		if parsed && isFinite(f) {
			return f
		}
	}
	return 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RecordID reads the numeric id of a record, accepting numbers encoded as strings.
func RecordID(rec models.Record) int64 {
	return int64Field(rec, "id")
}

func int64Field(rec models.Record, keys ...string) int64 {
	return int64(math.Round(floatField(rec, keys...)))
}

func timeField(rec models.Record, keys ...string) time.Time {
	for _, key := range keys {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case time.Time:
			return v
		case string:
			raw := strings.TrimSpace(v)
			for _, layout := range recordTimeLayouts {
				if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
					return parsed
				}
			}
		case float64:
			// epoch milliseconds
			return time.UnixMilli(int64(v))
		}
	}
	return time.Time{}
}

func listField(rec models.Record, keys ...string) []string {
	for _, key := range keys {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		var parts []string
		switch v := value.(type) {
		case []string:
			parts = v
		case []any:
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
		case string:
			parts = strings.FieldsFunc(v, func(r rune) bool {
				return r == ',' || r == '，' || r == ';' || r == '、' || r == '|'
			})
		}
		cleaned := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return nil
}
