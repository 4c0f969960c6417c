package service

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/go-mysql-org/go-mysql/canal"
	"github.com/nats-io/nats.go"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/model"
)

// NATS subjects fed by the relay and consumed by the WebSocket hub.
const (
	SubjectLocationLatest = "att.location.latest"
	SubjectLocationUser   = "att.location.user." // + username
)

const (
	binlogBackoffMin = time.Second
	binlogBackoffMax = 60 * time.Second

	// A stream that stayed up this long counts as a healthy connection,
	// so the next failure restarts the backoff ladder from the bottom.
	binlogHealthyUptime = 5 * time.Minute
)

// BinlogRelay tails the MySQL replication stream for writes to the
// location table and republishes each decoded row to NATS. It reacts to
// any writer of the table, including bulk and administrative paths that
// never touch LocationService. Rows that fail column mapping are logged
// and dropped; connection failures reconnect with exponential backoff.
type BinlogRelay struct {
	cfg  config.BinlogConfig
	nats *nats.Conn

	mu      sync.Mutex
	canal   *canal.Canal
	stopped bool
	done    chan struct{}
}

// NewBinlogRelay creates a relay for the configured table.
func NewBinlogRelay(cfg config.BinlogConfig, natsConn *nats.Conn) *BinlogRelay {
	return &BinlogRelay{
		cfg:  cfg,
		nats: natsConn,
		done: make(chan struct{}),
	}
}

// Start runs the relay on its own goroutine for the process lifetime.
func (r *BinlogRelay) Start() {
	go r.run()
}

// Stop terminates the relay and waits for the run loop to exit.
func (r *BinlogRelay) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	if r.canal != nil {
		r.canal.Close()
	}
	r.mu.Unlock()
	<-r.done
}

func (r *BinlogRelay) run() {
	defer close(r.done)

	var backoff time.Duration
	for {
		if r.isStopped() {
			return
		}

		start := time.Now()
		err := r.tail()
		if r.isStopped() {
			return
		}

		backoff = nextBackoff(backoff, time.Since(start))
		log.Printf("[Binlog] Replication stream ended: %v, reconnecting in %s", err, backoff)
		time.Sleep(backoff)
	}
}

// nextBackoff doubles the reconnect delay up to the cap. A stream that
// survived long enough to count as healthy resets the ladder, so a flap
// after hours of tailing does not pay the maximum delay.
func nextBackoff(current, uptime time.Duration) time.Duration {
	if current == 0 || uptime >= binlogHealthyUptime {
		return binlogBackoffMin
	}
	next := current * 2
	if next > binlogBackoffMax {
		next = binlogBackoffMax
	}
	return next
}

// tail connects to the replication stream and blocks until it fails.
func (r *BinlogRelay) tail() error {
	cfg := canal.NewDefaultConfig()
	cfg.Addr = fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port)
	cfg.User = r.cfg.User
	cfg.Password = r.cfg.Password
	cfg.ServerID = r.cfg.ServerID
	cfg.Dump.ExecutionPath = "" // replication only, no initial dump
	cfg.IncludeTableRegex = []string{regexp.QuoteMeta(r.cfg.Database + "." + r.cfg.Table)}

	c, err := canal.NewCanal(cfg)
	if err != nil {
		return fmt.Errorf("connect replication stream: %w", err)
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		c.Close()
		return nil
	}
	r.canal = c
	r.mu.Unlock()

	c.SetEventHandler(&binlogHandler{relay: r, table: r.cfg.Table})

	pos, err := c.GetMasterPos()
	if err != nil {
		c.Close()
		return fmt.Errorf("read master position: %w", err)
	}

	log.Printf("[Binlog] Tailing %s.%s from %s", r.cfg.Database, r.cfg.Table, pos)
	return c.RunFrom(pos)
}

func (r *BinlogRelay) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// publish pushes one decoded row to the global and per-user subjects.
func (r *BinlogRelay) publish(msg *model.LocationMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Binlog] Marshal location message failed: %v", err)
		return
	}
	if err := r.nats.Publish(SubjectLocationLatest, data); err != nil {
		log.Printf("[Binlog] Publish latest failed: %v", err)
	}
	if err := r.nats.Publish(SubjectLocationUser+msg.Username, data); err != nil {
		log.Printf("[Binlog] Publish per-user failed: %v", err)
	}
}

// binlogHandler maps row events to location messages.
type binlogHandler struct {
	canal.DummyEventHandler
	relay *BinlogRelay
	table string
}

func (h *binlogHandler) OnRow(e *canal.RowsEvent) error {
	if e.Table.Name != h.table {
		return nil
	}

	rows := e.Rows
	if e.Action == canal.UpdateAction {
		// Update events carry (before, after) pairs; keep the after images.
		after := make([][]interface{}, 0, len(rows)/2)
		for i := 1; i < len(rows); i += 2 {
			after = append(after, rows[i])
		}
		rows = after
	} else if e.Action != canal.InsertAction {
		return nil
	}

	for _, row := range rows {
		msg, err := mapLocationRow(row)
		if err != nil {
			log.Printf("[Binlog] Dropping unmappable row: %v", err)
			continue
		}
		h.relay.publish(msg)
	}
	return nil
}

func (h *binlogHandler) String() string {
	return "attendtrack-location-relay"
}

// mapLocationRow maps raw column positions to a location message.
// Column order follows the location_samples schema:
// id, username, lat, lon, time, created_at.
func mapLocationRow(row []interface{}) (*model.LocationMessage, error) {
	if len(row) < 5 {
		return nil, fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}

	id, err := toUint(row[0])
	if err != nil {
		return nil, fmt.Errorf("id column: %w", err)
	}
	username, ok := row[1].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("username column: unexpected value %v", row[1])
	}
	lat, err := toFloat(row[2])
	if err != nil {
		return nil, fmt.Errorf("lat column: %w", err)
	}
	lon, err := toFloat(row[3])
	if err != nil {
		return nil, fmt.Errorf("lon column: %w", err)
	}
	ts, err := toTime(row[4])
	if err != nil {
		return nil, fmt.Errorf("time column: %w", err)
	}

	return &model.LocationMessage{
		ID:        id,
		Username:  username,
		Lat:       lat,
		Lon:       lon,
		Timestamp: ts.Unix(),
	}, nil
}

func toUint(v interface{}) (uint, error) {
	switch n := v.(type) {
	case int:
		return uint(n), nil
	case int8:
		return uint(n), nil
	case int16:
		return uint(n), nil
	case int32:
		return uint(n), nil
	case int64:
		return uint(n), nil
	case uint32:
		return uint(n), nil
	case uint64:
		return uint(n), nil
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		// DECIMAL columns decode as strings.
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("not a float: %T", v)
}

func toTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if parsed, err := time.ParseInLocation("2006-01-02 15:04:05", t, time.Local); err == nil {
			return parsed, nil
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %v (%T)", v, v)
}
