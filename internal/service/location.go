package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"attendtrack/api/internal/model"
)

// ErrBadLocationTime is surfaced to clients with the expected format.
var ErrBadLocationTime = errors.New("timestamp must be ISO-8601, e.g. 2006-01-02T15:04:05Z07:00")

const lastLocationTTL = 24 * time.Hour

// LocationService appends GPS samples and answers latest/history queries.
// The latest sample per user is cached in Redis so dashboards refreshing
// the map do not hit the samples table.
type LocationService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewLocationService creates a location service. redisClient may be nil.
func NewLocationService(db *gorm.DB, redisClient *redis.Client) *LocationService {
	return &LocationService{db: db, redis: redisClient}
}

// Record appends one sample. Samples are never updated in place.
func (s *LocationService) Record(ctx context.Context, username string, req *model.RecordLocationRequest) (*model.LocationSample, error) {
	when, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return nil, ErrBadLocationTime
	}

	sample := model.LocationSample{
		Username: username,
		Lat:      req.Lat,
		Lon:      req.Lon,
		Time:     when,
	}
	if err := s.db.WithContext(ctx).Create(&sample).Error; err != nil {
		return nil, fmt.Errorf("create location sample: %w", err)
	}

	s.cacheLatest(ctx, &sample)
	return &sample, nil
}

// Latest returns the most recent sample for a user, Redis-first.
func (s *LocationService) Latest(ctx context.Context, username string) (*model.LocationSample, error) {
	if sample := s.cachedLatest(ctx, username); sample != nil {
		return sample, nil
	}

	var sample model.LocationSample
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("time DESC").
		First(&sample).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// AllLatest returns the most recent sample for every user with samples.
func (s *LocationService) AllLatest(ctx context.Context) ([]model.LocationSample, error) {
	var usernames []string
	if err := s.db.WithContext(ctx).
		Model(&model.LocationSample{}).
		Distinct("username").
		Pluck("username", &usernames).Error; err != nil {
		return nil, err
	}

	samples := make([]model.LocationSample, 0, len(usernames))
	for _, username := range usernames {
		if sample, err := s.Latest(ctx, username); err == nil {
			samples = append(samples, *sample)
		}
	}
	return samples, nil
}

// History returns a user's full sample history ordered by time.
func (s *LocationService) History(ctx context.Context, username string, limit int) ([]model.LocationSample, error) {
	query := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var samples []model.LocationSample
	if err := query.Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *LocationService) cacheLatest(ctx context.Context, sample *model.LocationSample) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, lastLocationKey(sample.Username), data, lastLocationTTL).Err(); err != nil {
		log.Printf("[Location] Cache store failed: %v", err)
	}
}

func (s *LocationService) cachedLatest(ctx context.Context, username string) *model.LocationSample {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, lastLocationKey(username)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[Location] Cache lookup failed: %v", err)
		}
		return nil
	}
	var sample model.LocationSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil
	}
	return &sample
}

func lastLocationKey(username string) string {
	return "att:lastloc:" + username
}
