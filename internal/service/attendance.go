package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"attendtrack/api/internal/model"
)

// PunchTimeLayout is the accepted client timestamp format.
const PunchTimeLayout = "2006-01-02 15:04:05"

const defaultWorkType = "Office"

var (
	// ErrAlreadyMarked is returned once both legs are populated.
	ErrAlreadyMarked = errors.New("already marked attendance today")
	// ErrFieldImagesPending rejects WFF field images before the morning leg.
	ErrFieldImagesPending = errors.New("field images require a morning punch first")
	// ErrImageRequired is returned when a punch carries no image at all.
	ErrImageRequired = errors.New("an image is required to mark attendance")
	// ErrBadPunchTime is returned for unparseable client timestamps.
	ErrBadPunchTime = fmt.Errorf("timestamp must match %q", PunchTimeLayout)
)

// PunchInput carries one punch event.
type PunchInput struct {
	Username    string
	Image       []byte
	Timestamp   string // optional, PunchTimeLayout; server time when empty
	Type        string // honored only when the day's record is created
	Reason      string
	FieldImages [][]byte
}

// AttendanceService maintains one attendance row per user per day.
// Punches for the same (user, day) are serialized through a keyed mutex
// so two concurrent morning punches cannot both observe an unset leg.
type AttendanceService struct {
	db    *gorm.DB
	files *FileStore

	startMinutes int // office start, minutes after midnight
	endMinutes   int // office end

	locks keyedMutex
}

// NewAttendanceService creates an attendance service. officeStart and
// officeEnd are "HH:MM"; unparseable values fall back to 10:00 / 18:00.
func NewAttendanceService(db *gorm.DB, files *FileStore, officeStart, officeEnd string) *AttendanceService {
	return &AttendanceService{
		db:           db,
		files:        files,
		startMinutes: parseMinutes(officeStart, 10*60),
		endMinutes:   parseMinutes(officeEnd, 18*60),
	}
}

// RecordPunch applies one punch event and returns the day's record.
func (s *AttendanceService) RecordPunch(ctx context.Context, in *PunchInput) (*model.Attendance, error) {
	when, err := s.punchTime(in.Timestamp)
	if err != nil {
		return nil, err
	}
	date := when.Format("2006-01-02")

	unlock := s.locks.Lock(in.Username + "|" + date)
	defer unlock()

	var record *model.Attendance
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.findOrCreate(tx, in, date)
		if txErr != nil {
			return txErr
		}

		if record.MorningTime != nil && record.EveningTime != nil {
			return ErrAlreadyMarked
		}

		if len(in.Image) > 0 {
			if txErr = s.advanceLeg(record, in.Image, when); txErr != nil {
				return txErr
			}
		} else if record.MorningTime == nil && len(in.FieldImages) == 0 {
			return ErrImageRequired
		}

		if txErr = s.attachFieldImages(record, in.FieldImages); txErr != nil {
			return txErr
		}

		if in.Reason != "" {
			record.Reason = in.Reason
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Today returns the record for (username, today), if any.
func (s *AttendanceService) Today(ctx context.Context, username string) (*model.Attendance, error) {
	var record model.Attendance
	err := s.db.WithContext(ctx).
		Where("username = ? AND date = ?", username, time.Now().Format("2006-01-02")).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns a user's records for one month ("2006-01"), oldest first.
func (s *AttendanceService) History(ctx context.Context, username, month string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := s.db.WithContext(ctx).
		Where("username = ? AND date LIKE ?", username, month+"%").
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ForMonth returns every user's records for one month, for reporting.
func (s *AttendanceService) ForMonth(ctx context.Context, month string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := s.db.WithContext(ctx).
		Where("date LIKE ?", month+"%").
		Order("username ASC, date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *AttendanceService) findOrCreate(tx *gorm.DB, in *PunchInput, date string) (*model.Attendance, error) {
	var record model.Attendance
	err := tx.Where("username = ? AND date = ?", in.Username, date).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The declared type is frozen at creation; later punches ignore it.
	workType := in.Type
	if workType == "" {
		workType = defaultWorkType
	}
	record = model.Attendance{
		Username: in.Username,
		Date:     date,
		Type:     workType,
		Reason:   in.Reason,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}
	return &record, nil
}

// advanceLeg fills the morning leg when unset, otherwise the evening leg.
func (s *AttendanceService) advanceLeg(record *model.Attendance, image []byte, when time.Time) error {
	path, err := s.files.SaveAttendanceImage(image)
	if err != nil {
		return err
	}

	if record.MorningTime == nil {
		t := when
		record.MorningImage = path
		record.MorningTime = &t
		record.Status = s.morningStatus(when)
		return nil
	}

	t := when
	record.EveningImage = path
	record.EveningTime = &t
	record.Status = s.eveningStatus(record.Status, when)
	return nil
}

// morningStatus is Late Entry strictly after office start, On Time otherwise.
func (s *AttendanceService) morningStatus(when time.Time) string {
	if minutesOfDay(when) > s.startMinutes {
		return model.StatusLateEntry
	}
	return model.StatusOnTime
}

// eveningStatus downgrades to a half-day label when the evening leg lands
// strictly before office end; a later punch-out leaves the status alone.
func (s *AttendanceService) eveningStatus(current string, when time.Time) string {
	if minutesOfDay(when) >= s.endMinutes {
		return current
	}
	switch current {
	case model.StatusOnTime:
		return model.StatusHalfDay
	case model.StatusLateEntry:
		return model.StatusLateHalf
	}
	return current
}

// attachFieldImages applies the WFF field-image policy. Records with any
// other frozen type ignore field images entirely.
func (s *AttendanceService) attachFieldImages(record *model.Attendance, images [][]byte) error {
	if record.Type != model.WorkTypeWFF {
		return nil
	}
	if record.FieldImageFlag == "" {
		record.FieldImageFlag = model.FieldImagesNotAdded
	}
	if len(images) == 0 {
		return nil
	}
	if record.MorningTime == nil {
		return ErrFieldImagesPending
	}

	var paths []string
	for _, img := range images {
		if len(img) == 0 {
			continue
		}
		path, err := s.files.SaveAttendanceImage(img)
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil
	}

	if record.FieldImages != "" {
		record.FieldImages += ","
	}
	record.FieldImages += strings.Join(paths, ",")
	record.FieldImageFlag = model.FieldImagesAdded
	return nil
}

func (s *AttendanceService) punchTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	when, err := time.ParseInLocation(PunchTimeLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, ErrBadPunchTime
	}
	return when, nil
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseMinutes(hhmm string, fallback int) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fallback
	}
	return h*60 + m
}

// keyedMutex serializes critical sections sharing the same key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
