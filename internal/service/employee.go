package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"attendtrack/api/internal/model"
)

var (
	// ErrIdentityCardExists rejects duplicate onboarding attempts.
	ErrIdentityCardExists = errors.New("identity card number already exists")
	// ErrUnknownLocation is returned for district/tehsil pairs not in the
	// reference tables.
	ErrUnknownLocation = errors.New("unknown district or tehsil")
	// ErrNoUserForEmployee is returned when the username has no account.
	ErrNoUserForEmployee = errors.New("no user account exists for this username")
	// ErrEmployeeNotFound is returned for lookups that match nothing.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// EmployeeService handles onboarding and lookups.
type EmployeeService struct {
	db      *gorm.DB
	files   *FileStore
	refs    *ReferenceService
	faceRec *FaceRecClient
}

// NewEmployeeService creates an employee service. faceRec may be nil to
// disable enrollment.
func NewEmployeeService(db *gorm.DB, files *FileStore, refs *ReferenceService, faceRec *FaceRecClient) *EmployeeService {
	return &EmployeeService{db: db, files: files, refs: refs, faceRec: faceRec}
}

// Create validates, stores the uploaded images, persists the employee and
// queues a best-effort face-recognition enrollment. The enrollment never
// blocks or fails the onboarding request.
func (s *EmployeeService) Create(ctx context.Context, req *model.CreateEmployeeRequest, face, signature []byte) (*model.Employee, error) {
	taken, err := s.identityCardTaken(ctx, req.IdentityCardNo)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrIdentityCardExists
	}

	if ok, err := s.refs.LocationExists(ctx, req.District, req.Tehsil); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnknownLocation
	}

	var userCount int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", req.Username).
		Count(&userCount).Error; err != nil {
		return nil, fmt.Errorf("check user account: %w", err)
	}
	if userCount == 0 {
		return nil, ErrNoUserForEmployee
	}

	facePath, err := s.files.SaveEmployeeImage(req.Name, "Face", face)
	if err != nil {
		return nil, fmt.Errorf("store face image: %w", err)
	}
	signaturePath, err := s.files.SaveEmployeeImage(req.Name, "Signature", signature)
	if err != nil {
		return nil, fmt.Errorf("store signature image: %w", err)
	}

	employee := model.Employee{
		IdentityCardNo: req.IdentityCardNo,
		Name:           req.Name,
		Username:       req.Username,
		District:       req.District,
		Tehsil:         req.Tehsil,
		OfficeName:     req.OfficeName,
		LabName:        req.LabName,
		Designation:    req.Designation,
		FacePath:       facePath,
		SignaturePath:  signaturePath,
		Active:         true,
	}
	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil {
		// The images were written before the insert; do not leave them
		// orphaned on disk.
		if rmErr := s.files.Remove(facePath); rmErr != nil {
			log.Printf("[Employee] Cleanup after failed create: %v", rmErr)
		}
		if rmErr := s.files.Remove(signaturePath); rmErr != nil {
			log.Printf("[Employee] Cleanup after failed create: %v", rmErr)
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}

	if s.faceRec != nil {
		s.faceRec.Enqueue(EnrollmentJob{
			Subject: sanitizeName(req.IdentityCardNo) + "_" + sanitizeName(req.Username),
			Image:   face,
		})
	}
	return &employee, nil
}

// Get returns one employee by id.
func (s *EmployeeService) Get(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := s.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// GetByUsername returns the employee correlated with an account.
func (s *EmployeeService) GetByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var employee model.Employee
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// List returns employees, newest first.
func (s *EmployeeService) List(ctx context.Context, limit, offset int) ([]model.Employee, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Employee{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var employees []model.Employee
	if err := query.Find(&employees).Error; err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// CheckIdentityCard reports whether an identity card number is taken.
func (s *EmployeeService) CheckIdentityCard(ctx context.Context, identityCardNo string) (bool, error) {
	return s.identityCardTaken(ctx, identityCardNo)
}

func (s *EmployeeService) identityCardTaken(ctx context.Context, identityCardNo string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Employee{}).
		Where("identity_card_no = ?", identityCardNo).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check identity card: %w", err)
	}
	return count > 0, nil
}
