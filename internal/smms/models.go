package smms

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type envelope struct {
	Success   bool            `json:"success"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"RequestId"`
	Data      json.RawMessage `json:"data"`
	Images    string          `json:"images"`
}

func (e *envelope) hasData() bool {
	d := strings.TrimSpace(string(e.Data))
	return d != "" && d != "null"
}

type tokenData struct {
	Token string `json:"token"`
}

type profileData struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	GroupExpire   string `json:"group_expire"`
	EmailVerified int    `json:"email_verified"`
	DiskUsage     string `json:"disk_usage"`
	DiskLimit     string `json:"disk_limit"`
	DiskUsageRaw  int64  `json:"disk_usage_raw"`
	DiskLimitRaw  int64  `json:"disk_limit_raw"`
}

type imageData struct {
	FileID    int64     `json:"file_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Filename  string    `json:"filename"`
	Storename string    `json:"storename"`
	Size      int64     `json:"size"`
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	CreatedAt timestamp `json:"created_at"`
	URL       string    `json:"url"`
	Delete    string    `json:"delete"`
	Page      string    `json:"page"`
}

const timestampLayout = "2006-01-02 15:04:05"

// timestamp accepts "2006-01-02 15:04:05", RFC 3339 or unix seconds, as
// either a JSON string or number.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(secs, 0)
		return nil
	}
	if parsed, err := time.ParseInLocation(timestampLayout, s, time.Local); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
