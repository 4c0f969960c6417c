package model

// Static lookup tables, read-only from the application's perspective.

// District is a top-level administrative area.
type District struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:50"`
}

// Tehsil is a sub-division of a district.
type Tehsil struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:50"`
	District string `json:"district" gorm:"index;size:50"`
}

// OfficeName is a known office or lab an employee can belong to.
type OfficeName struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:100"`
}

// WorkType enumerates the declared attendance types ("Office", "WFF", ...).
type WorkType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:20"`
}

// OfficeTime holds the official day boundaries, "HH:MM".
type OfficeTime struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Start string `json:"start" gorm:"size:5"`
	End   string `json:"end" gorm:"size:5"`
}

// Holiday is a non-working calendar date.
type Holiday struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Date string `json:"date" gorm:"uniqueIndex;size:10"`
	Name string `json:"name" gorm:"size:100"`
}
