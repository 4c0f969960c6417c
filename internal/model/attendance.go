package model

import "time"

// Attendance status labels derived from the punch legs.
const (
	StatusOnTime    = "On Time"
	StatusLateEntry = "Late Entry"
	StatusHalfDay   = "Half Day"
	StatusLateHalf  = "Late & Half"
)

// WorkTypeWFF is the work type that requires supplementary field images.
const WorkTypeWFF = "WFF"

// Field-image flag values on an attendance record.
const (
	FieldImagesAdded    = "Images Added"
	FieldImagesNotAdded = "Not Added"
)

// Attendance holds one logical row per (user, calendar date).
// Date is stored as "2006-01-02" so the per-day uniqueness constraint
// does not depend on the column's time zone handling.
type Attendance struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"size:50;uniqueIndex:idx_user_date"`
	Date           string     `json:"date" gorm:"size:10;uniqueIndex:idx_user_date"`
	Type           string     `json:"type" gorm:"size:20"` // frozen at creation
	MorningImage   string     `json:"morning_image" gorm:"size:255"`
	MorningTime    *time.Time `json:"morning_time"`
	EveningImage   string     `json:"evening_image" gorm:"size:255"`
	EveningTime    *time.Time `json:"evening_time"`
	Status         string     `json:"status" gorm:"size:20"`
	FieldImages    string     `json:"field_images" gorm:"type:text"` // comma-joined relative paths
	FieldImageFlag string     `json:"field_image_flag" gorm:"size:20"`
	Reason         string     `json:"reason" gorm:"size:255"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
