package service

import (
	"testing"
	"time"
)

func TestMapLocationRow(t *testing.T) {
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		row     []interface{}
		wantErr bool
	}{
		{
			name: "typical insert",
			row:  []interface{}{int64(42), "alice", 31.5, 74.3, when, when},
		},
		{
			name: "unsigned id and float32 coords",
			row:  []interface{}{uint64(7), "bob", float32(33.7), float32(73.0), when, when},
		},
		{
			name: "decimal coords decoded as strings",
			row:  []interface{}{int32(9), "carol", "31.582045", "74.329376", when, when},
		},
		{
			name: "datetime decoded as string",
			row:  []interface{}{int64(1), "alice", 31.5, 74.3, "2024-03-01 09:00:00", nil},
		},
		{
			name:    "short row",
			row:     []interface{}{int64(1), "alice", 31.5},
			wantErr: true,
		},
		{
			name:    "missing username",
			row:     []interface{}{int64(1), nil, 31.5, 74.3, when, when},
			wantErr: true,
		},
		{
			name:    "non-numeric id",
			row:     []interface{}{"x", "alice", 31.5, 74.3, when, when},
			wantErr: true,
		},
		{
			name:    "garbage timestamp",
			row:     []interface{}{int64(1), "alice", 31.5, 74.3, "yesterday", nil},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := mapLocationRow(tt.row)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("mapLocationRow: %v", err)
			}
			if msg.Username == "" {
				t.Error("empty username in mapped message")
			}
			if msg.Timestamp == 0 {
				t.Error("zero timestamp in mapped message")
			}
		})
	}
}

func TestNextBackoff(t *testing.T) {
	tests := []struct {
		name    string
		current time.Duration
		uptime  time.Duration
		want    time.Duration
	}{
		{"first failure starts at minimum", 0, 0, binlogBackoffMin},
		{"quick flap doubles", time.Second, 200 * time.Millisecond, 2 * time.Second},
		{"doubling continues", 8 * time.Second, time.Second, 16 * time.Second},
		{"capped at maximum", 40 * time.Second, time.Second, binlogBackoffMax},
		{"stays at maximum", binlogBackoffMax, time.Second, binlogBackoffMax},
		{"healthy stream resets the ladder", binlogBackoffMax, binlogHealthyUptime, binlogBackoffMin},
		{"long-lived stream resets the ladder", 16 * time.Second, time.Hour, binlogBackoffMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextBackoff(tt.current, tt.uptime); got != tt.want {
				t.Errorf("nextBackoff(%s, %s) = %s, want %s", tt.current, tt.uptime, got, tt.want)
			}
		})
	}
}

func TestMapLocationRow_Values(t *testing.T) {
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	msg, err := mapLocationRow([]interface{}{int64(42), "alice", 31.5, 74.3, when, when})
	if err != nil {
		t.Fatalf("mapLocationRow: %v", err)
	}

	if msg.ID != 42 {
		t.Errorf("id = %d, want 42", msg.ID)
	}
	if msg.Username != "alice" {
		t.Errorf("username = %q, want alice", msg.Username)
	}
	if msg.Lat != 31.5 || msg.Lon != 74.3 {
		t.Errorf("coords = (%v, %v), want (31.5, 74.3)", msg.Lat, msg.Lon)
	}
	if msg.Timestamp != when.Unix() {
		t.Errorf("timestamp = %d, want %d", msg.Timestamp, when.Unix())
	}
}
