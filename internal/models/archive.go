package models

import "time"

// Archive - сохраненный ZIP с бюллетенями группы
type Archive struct {
	ID           string    `gorm:"primaryKey;type:varchar(200)" json:"id"`
	GroupName    string    `gorm:"not null" json:"group_name"`
	Period       string    `json:"period"`
	Path         string    `gorm:"not null" json:"-"`
	ContentType  string    `gorm:"type:varchar(100);not null" json:"content_type"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	StudentCount int       `gorm:"not null;default:0" json:"student_count"`
	FailureCount int       `gorm:"not null;default:0" json:"failure_count"`
	SnapshotID   *string   `gorm:"type:varchar(36);index" json:"snapshot_id,omitempty"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Archive) TableName() string {
	return "archives"
}

const ContentTypeZip = "application/zip"

// DownloadPath - путь для скачивания через HTTP API
func (a *Archive) DownloadPath() string {
	return "/api/download?id=" + a.ID
}

// IsExpired проверяет, истек ли срок хранения
func (a *Archive) IsExpired(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}
