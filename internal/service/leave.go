package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"attendtrack/api/internal/model"
)

// ErrBadDateRange is returned for unordered or unparseable leave dates.
var ErrBadDateRange = errors.New("dates must be YYYY-MM-DD with from_date <= to_date")

// LeaveService records leave requests and extra-work logs. There is no
// approval workflow; new requests are stored as approved.
type LeaveService struct {
	db    *gorm.DB
	files *FileStore
}

// NewLeaveService creates a leave service.
func NewLeaveService(db *gorm.DB, files *FileStore) *LeaveService {
	return &LeaveService{db: db, files: files}
}

// CreateLeave records a leave request for a user.
func (s *LeaveService) CreateLeave(ctx context.Context, username string, req *model.CreateLeaveRequest) (*model.Leave, error) {
	from, err1 := time.Parse("2006-01-02", req.FromDate)
	to, err2 := time.Parse("2006-01-02", req.ToDate)
	if err1 != nil || err2 != nil || to.Before(from) {
		return nil, ErrBadDateRange
	}

	leave := model.Leave{
		Username:     username,
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
		DurationType: req.DurationType,
		Reason:       req.Reason,
		Status:       model.LeaveApproved,
	}
	if err := s.db.WithContext(ctx).Create(&leave).Error; err != nil {
		return nil, fmt.Errorf("create leave: %w", err)
	}
	return &leave, nil
}

// ListLeaves returns one user's leave requests, newest first.
func (s *LeaveService) ListLeaves(ctx context.Context, username string) ([]model.Leave, error) {
	var leaves []model.Leave
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("from_date DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

// ListAllLeaves returns every leave request, newest first.
func (s *LeaveService) ListAllLeaves(ctx context.Context) ([]model.Leave, error) {
	var leaves []model.Leave
	if err := s.db.WithContext(ctx).Order("from_date DESC").Find(&leaves).Error; err != nil {
		return nil, err
	}
	return leaves, nil
}

// CreateExtraWork logs extra work, with an optional supporting image.
func (s *LeaveService) CreateExtraWork(ctx context.Context, username string, req *model.CreateExtraWorkRequest, image []byte) (*model.ExtraWork, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, ErrBadDateRange
	}

	entry := model.ExtraWork{
		Username:    username,
		Date:        req.Date,
		Hours:       req.Hours,
		Description: req.Description,
	}
	if len(image) > 0 {
		path, err := s.files.SaveAttendanceImage(image)
		if err != nil {
			return nil, err
		}
		entry.ImagePath = path
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create extra work: %w", err)
	}
	return &entry, nil
}

// ListExtraWork returns one user's extra-work entries, newest first.
func (s *LeaveService) ListExtraWork(ctx context.Context, username string) ([]model.ExtraWork, error) {
	var entries []model.ExtraWork
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
