package model

import "time"

// Leave statuses. The service has no approval workflow; requests are
// recorded as approved unless an admin later rejects them by hand.
const (
	LeaveApproved = "Approved"
	LeaveRejected = "Rejected"
)

// Leave represents a leave request for a date range.
type Leave struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"index;size:50"`
	FromDate     string    `json:"from_date" gorm:"size:10"`
	ToDate       string    `json:"to_date" gorm:"size:10"`
	DurationType string    `json:"duration_type" gorm:"size:20"` // full, half
	Reason       string    `json:"reason" gorm:"size:255"`
	Status       string    `json:"status" gorm:"size:20;default:'Approved'"`
	ApprovedBy   string    `json:"approved_by" gorm:"size:50"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateLeaveRequest carries a leave request payload.
type CreateLeaveRequest struct {
	FromDate     string `json:"from_date" binding:"required"`
	ToDate       string `json:"to_date" binding:"required"`
	DurationType string `json:"duration_type" binding:"required,oneof=full half"`
	Reason       string `json:"reason" binding:"required,max=255"`
}

// ExtraWork logs work performed outside office hours.
type ExtraWork struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"index;size:50"`
	Date        string    `json:"date" gorm:"size:10"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description" gorm:"size:255"`
	ImagePath   string    `json:"image_path" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateExtraWorkRequest carries an extra-work log entry.
type CreateExtraWorkRequest struct {
	Date        string  `form:"date" binding:"required"`
	Hours       float64 `form:"hours" binding:"required,gt=0,lte=24"`
	Description string  `form:"description" binding:"required,max=255"`
}
