package service

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"attendtrack/api/internal/model"
)

// ReferenceService answers read-only lookups against the static tables.
type ReferenceService struct {
	db *gorm.DB
}

// NewReferenceService creates a reference service.
func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

// Districts returns all districts ordered by name.
func (s *ReferenceService) Districts(ctx context.Context) ([]model.District, error) {
	var districts []model.District
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&districts).Error; err != nil {
		return nil, err
	}
	return districts, nil
}

// Tehsils returns the tehsils of one district.
func (s *ReferenceService) Tehsils(ctx context.Context, district string) ([]model.Tehsil, error) {
	var tehsils []model.Tehsil
	err := s.db.WithContext(ctx).
		Where("district = ?", district).
		Order("name ASC").
		Find(&tehsils).Error
	if err != nil {
		return nil, err
	}
	return tehsils, nil
}

// OfficeNames returns all known offices.
func (s *ReferenceService) OfficeNames(ctx context.Context) ([]model.OfficeName, error) {
	var offices []model.OfficeName
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

// WorkTypes returns the declared attendance types.
func (s *ReferenceService) WorkTypes(ctx context.Context) ([]model.WorkType, error) {
	var types []model.WorkType
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// Holidays returns the non-working dates.
func (s *ReferenceService) Holidays(ctx context.Context) ([]model.Holiday, error) {
	var holidays []model.Holiday
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

// OfficeTime returns the official day boundaries.
func (s *ReferenceService) OfficeTime(ctx context.Context) (*model.OfficeTime, error) {
	var ot model.OfficeTime
	if err := s.db.WithContext(ctx).First(&ot).Error; err != nil {
		return nil, err
	}
	return &ot, nil
}

// LocationExists reports whether (district, tehsil) is a known pair.
func (s *ReferenceService) LocationExists(ctx context.Context, district, tehsil string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Tehsil{}).
		Where("district = ? AND name = ?", district, tehsil).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check location: %w", err)
	}
	return count > 0, nil
}

// Seed fills empty reference tables with the defaults the application
// needs to function. Safe to call on every startup.
func (s *ReferenceService) Seed(ctx context.Context, officeStart, officeEnd string) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.WorkType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		types := []model.WorkType{{Name: "Office"}, {Name: model.WorkTypeWFF}}
		if err := db.Create(&types).Error; err != nil {
			return err
		}
		log.Println("[Reference] Seeded work types")
	}

	if err := db.Model(&model.OfficeTime{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&model.OfficeTime{Start: officeStart, End: officeEnd}).Error; err != nil {
			return err
		}
		log.Println("[Reference] Seeded office time")
	}
	return nil
}
