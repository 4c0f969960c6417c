package service

import (
	"sync"
	"testing"
	"time"

	"attendtrack/api/internal/config"
)

func TestFaceRecEnqueueAfterClose(t *testing.T) {
	c := NewFaceRecClient(config.FaceRecConfig{
		URL:     "http://localhost:0/enroll",
		Timeout: time.Second,
	})

	c.Close()
	// Must be dropped silently, not panic on the closed queue.
	c.Enqueue(EnrollmentJob{Subject: "late", Image: pngBytes})

	// Close is idempotent.
	c.Close()
}

func TestFaceRecEnqueueCloseRace(t *testing.T) {
	c := NewFaceRecClient(config.FaceRecConfig{
		URL:     "http://localhost:0/enroll",
		Timeout: time.Second,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Enqueue(EnrollmentJob{Subject: "racer", Image: pngBytes})
			}
		}()
	}
	c.Close()
	wg.Wait()
}
