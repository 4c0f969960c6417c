package model

import (
	"time"

	"gorm.io/gorm"
)

// Employee represents an onboarded employee record
type Employee struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	IdentityCardNo string         `json:"identity_card_no" gorm:"uniqueIndex;size:30"`
	Name           string         `json:"name" gorm:"size:100"`
	Username       string         `json:"username" gorm:"index;size:50"`
	District       string         `json:"district" gorm:"size:50"`
	Tehsil         string         `json:"tehsil" gorm:"size:50"`
	OfficeName     string         `json:"office_name" gorm:"size:100"`
	LabName        string         `json:"lab_name" gorm:"size:100"`
	Designation    string         `json:"designation" gorm:"size:50"`
	FacePath       string         `json:"face_path" gorm:"size:255"`
	SignaturePath  string         `json:"signature_path" gorm:"size:255"`
	Active         bool           `json:"active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// CreateEmployeeRequest carries the multipart form fields for onboarding.
// Face and signature images arrive as file parts next to these fields.
type CreateEmployeeRequest struct {
	IdentityCardNo string `form:"identity_card_no" binding:"required,max=30"`
	Name           string `form:"name" binding:"required,max=100"`
	Username       string `form:"username" binding:"required,max=50"`
	District       string `form:"district" binding:"required"`
	Tehsil         string `form:"tehsil" binding:"required"`
	OfficeName     string `form:"office_name"`
	LabName        string `form:"lab_name"`
	Designation    string `form:"designation"`
}
