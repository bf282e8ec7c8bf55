package model

import (
	"encoding/json"
	"time"
)

// SettingKeySiteContent holds the admin-edited public site content.
const SettingKeySiteContent = "site_content"

type SiteSettings struct {
	Key       string          `db:"setting_key"`
	Value     json.RawMessage `db:"setting_value"`
	UpdatedAt time.Time       `db:"updated_at"`
}
