package service

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/model"
)

func seedEmployeeFixtures(t *testing.T, db *gorm.DB) {
	t.Helper()
	fixtures := []interface{}{
		&model.User{Username: "alice", Email: "alice@example.com", Password: "x", Status: 1},
		&model.District{Name: "Lahore"},
		&model.Tehsil{Name: "Model Town", District: "Lahore"},
	}
	for _, f := range fixtures {
		if err := db.Create(f).Error; err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
}

func employeeReq(identityCard, username string) *model.CreateEmployeeRequest {
	return &model.CreateEmployeeRequest{
		IdentityCardNo: identityCard,
		Name:           "Alice Khan",
		Username:       username,
		District:       "Lahore",
		Tehsil:         "Model Town",
		OfficeName:     "Central Lab",
	}
}

func newTestEmployees(t *testing.T, faceRec *FaceRecClient) *EmployeeService {
	t.Helper()
	db := newTestDB(t)
	seedEmployeeFixtures(t, db)
	return NewEmployeeService(db, newTestFileStore(t), NewReferenceService(db), faceRec)
}

func TestEmployeeCreate_Success(t *testing.T) {
	svc := newTestEmployees(t, nil)

	employee, err := svc.Create(context.Background(), employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if employee.ID == 0 {
		t.Error("no id assigned")
	}
	if employee.FacePath == "" || employee.SignaturePath == "" {
		t.Error("image paths not stored")
	}
	if !employee.Active {
		t.Error("new employee not active")
	}
}

func TestEmployeeCreate_DuplicateIdentityCard(t *testing.T) {
	svc := newTestEmployees(t, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := svc.Create(ctx, employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes)
	if !errors.Is(err, ErrIdentityCardExists) {
		t.Fatalf("error = %v, want ErrIdentityCardExists", err)
	}

	var count int64
	if err := svc.db.Model(&model.Employee{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("employees = %d, want only the first persisted", count)
	}
}

func TestEmployeeCreate_UnknownLocation(t *testing.T) {
	svc := newTestEmployees(t, nil)

	req := employeeReq("35202-1234567-1", "alice")
	req.Tehsil = "Nowhere"
	if _, err := svc.Create(context.Background(), req, pngBytes, pngBytes); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("error = %v, want ErrUnknownLocation", err)
	}
}

func TestEmployeeCreate_RequiresUserAccount(t *testing.T) {
	svc := newTestEmployees(t, nil)

	req := employeeReq("35202-1234567-1", "ghost")
	if _, err := svc.Create(context.Background(), req, pngBytes, pngBytes); !errors.Is(err, ErrNoUserForEmployee) {
		t.Fatalf("error = %v, want ErrNoUserForEmployee", err)
	}
}

func TestEmployeeCreate_EnqueuesEnrollment(t *testing.T) {
	var calls atomic.Int32
	var subject atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		r.ParseMultipartForm(1 << 20)
		subject.Store(r.FormValue("subject"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	faceRec := NewFaceRecClient(config.FaceRecConfig{
		URL:      ts.URL,
		Timeout:  5 * time.Second,
		Workers:  2,
		QueueLen: 10,
	})
	svc := newTestEmployees(t, faceRec)

	if _, err := svc.Create(context.Background(), employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes); err != nil {
		t.Fatalf("Create: %v", err)
	}
	faceRec.Close() // waits for in-flight deliveries

	if calls.Load() != 1 {
		t.Fatalf("enrollment calls = %d, want 1", calls.Load())
	}
	if got := subject.Load(); got != "35202-1234567-1_alice" {
		t.Errorf("subject = %v, want 35202-1234567-1_alice", got)
	}
}

func TestEmployeeCreate_EnrollmentFailureDoesNotFailOnboarding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	faceRec := NewFaceRecClient(config.FaceRecConfig{
		URL:      ts.URL,
		Timeout:  5 * time.Second,
		Workers:  2,
		QueueLen: 10,
	})
	defer faceRec.Close()
	svc := newTestEmployees(t, faceRec)

	if _, err := svc.Create(context.Background(), employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes); err != nil {
		t.Fatalf("Create failed on enrollment error: %v", err)
	}
}

func TestEmployeeCreate_RemovesImagesWhenInsertFails(t *testing.T) {
	db := newTestDB(t)
	seedEmployeeFixtures(t, db)
	root := t.TempDir()
	svc := NewEmployeeService(db, NewFileStore(root), NewReferenceService(db), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Soft-delete the row. The duplicate precheck no longer sees it, but
	// the unique index on identity_card_no still does, so the next insert
	// fails at the database after the images are written.
	if err := db.Delete(&model.Employee{}, first.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := svc.Create(ctx, employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes); err == nil {
		t.Fatal("second Create succeeded, expected unique constraint failure")
	}

	files := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk upload root: %v", err)
	}
	if files != 2 {
		t.Errorf("files on disk = %d, want only the first employee's pair", files)
	}
}

func TestCheckIdentityCard(t *testing.T) {
	svc := newTestEmployees(t, nil)
	ctx := context.Background()

	taken, err := svc.CheckIdentityCard(ctx, "35202-1234567-1")
	if err != nil {
		t.Fatalf("CheckIdentityCard: %v", err)
	}
	if taken {
		t.Error("fresh identity card reported taken")
	}

	if _, err := svc.Create(ctx, employeeReq("35202-1234567-1", "alice"), pngBytes, pngBytes); err != nil {
		t.Fatalf("Create: %v", err)
	}

	taken, err = svc.CheckIdentityCard(ctx, "35202-1234567-1")
	if err != nil {
		t.Fatalf("CheckIdentityCard: %v", err)
	}
	if !taken {
		t.Error("existing identity card reported free")
	}
}
