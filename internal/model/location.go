package model

import "time"

// LocationSample is an immutable GPS sample, append-only.
type LocationSample struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"index;size:50"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Time      time.Time `json:"time" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table watched by the binlog relay.
func (LocationSample) TableName() string {
	return "location_samples"
}

// RecordLocationRequest carries a posted GPS sample.
type RecordLocationRequest struct {
	Lat       float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lon       float64 `json:"lon" binding:"required,min=-180,max=180"`
	Timestamp string  `json:"timestamp" binding:"required"` // RFC3339
}

// LocationMessage is the broadcast payload pushed to dashboards.
type LocationMessage struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp int64   `json:"timestamp"`
}
