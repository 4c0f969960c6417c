package service

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"

	"attendtrack/api/internal/config"
)

// EnrollmentJob is one face-recognition enrollment request.
type EnrollmentJob struct {
	Subject string // {identityCard}_{userName}
	Image   []byte
}

// FaceRecClient posts face images to the external recognition endpoint
// through a bounded worker pool. Delivery is at-most-once: failures are
// logged and swallowed, jobs are dropped when the queue is full, and
// nothing is retried. The caller's request path is never blocked.
type FaceRecClient struct {
	url    string
	client *http.Client

	jobs chan EnrollmentJob
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewFaceRecClient creates a client and starts its workers.
func NewFaceRecClient(cfg config.FaceRecConfig) *FaceRecClient {
	workers := cfg.Workers
	if workers < 2 {
		workers = 2
	} else if workers > 5 {
		workers = 5
	}
	queueLen := cfg.QueueLen
	if queueLen <= 0 {
		queueLen = 100
	}

	c := &FaceRecClient{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		jobs:   make(chan EnrollmentJob, queueLen),
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

// Enqueue submits a job without blocking. A full or closed queue drops
// the job.
func (c *FaceRecClient) Enqueue(job EnrollmentJob) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		log.Printf("[FaceRec] Client closed, dropping enrollment for %s", job.Subject)
		return
	}
	select {
	case c.jobs <- job:
	default:
		log.Printf("[FaceRec] Queue full, dropping enrollment for %s", job.Subject)
	}
}

// Close stops accepting jobs and waits for in-flight deliveries.
func (c *FaceRecClient) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *FaceRecClient) worker() {
	defer c.wg.Done()
	for job := range c.jobs {
		if err := c.deliver(job); err != nil {
			log.Printf("[FaceRec] Enrollment for %s failed: %v", job.Subject, err)
		}
	}
}

func (c *FaceRecClient) deliver(job EnrollmentJob) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("subject", job.Subject); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("image", job.Subject+".jpg")
	if err != nil {
		return err
	}
	if _, err := part.Write(job.Image); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}
