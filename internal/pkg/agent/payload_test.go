package agent

import (
	"testing"
	"time"

	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

func TestBuildUpdateRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	m := &Metrics{
		Hostname: "gpu01",
		GPU:      []string{"123 : /usr/bin/python3", "null"},
		Net:      map[string]string{"eth0": "10.0.0.5"},
		Mem:      map[string]string{"total": "62.8 GB", "used": "11.2 GB"},
		Swap:     map[string]string{"total": "8.0 GB", "used": "0.0 GB"},
		CPU:      map[string]float64{"user": 0.021, "system": 0.009, "idle": 0.97, "nice": 0},
		Other:    map[string]string{"uptime": "3 day 4 hour 5 minutes 6 sec", "nowtime": "2024-03-01 08:29:59"},
	}

	req, err := BuildUpdate("sekrit", m)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	s, err := snapshot.Normalize(*req, "sekrit", now)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Hostname != "gpu01" {
		t.Errorf("hostname = %q", s.Hostname)
	}
	if len(s.GPU) != 2 || s.GPU[0] != "123 : /usr/bin/python3" || s.GPU[1] != "null" {
		t.Errorf("gpu slots = %v", s.GPU)
	}
	if got, ok := s.CPUValue("user"); !ok || got != 0.021 {
		t.Errorf("cpu user = %v ok=%v", got, ok)
	}
	if tok, ok := s.NowTimeToken(); !ok || tok != "08:29:59" {
		t.Errorf("nowtime token = %q ok=%v", tok, ok)
	}
	if s.Mem["total"] != "62.8 GB" {
		t.Errorf("mem total = %v", s.Mem["total"])
	}
}

func TestBuildUpdateSingleSlot(t *testing.T) {
	m := &Metrics{
		Hostname: "cpu01",
		GPU:      []string{"null"},
		Net:      map[string]string{},
		Mem:      map[string]string{},
		Swap:     map[string]string{},
		CPU:      map[string]float64{},
		Other:    map[string]string{},
	}
	req, err := BuildUpdate("sekrit", m)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	if req.GPU != `["null"]` {
		t.Errorf("gpu field = %q", req.GPU)
	}
	got := snapshot.ParseSlotList(req.GPU)
	if len(got) != 1 || got[0] != "null" {
		t.Errorf("parsed slots = %v", got)
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		secs uint64
		want string
	}{
		{0, "0 day 0 hour 0 minutes 0 sec"},
		{59, "0 day 0 hour 0 minutes 59 sec"},
		{3661, "0 day 1 hour 1 minutes 1 sec"},
		{90061, "1 day 1 hour 1 minutes 1 sec"},
		{266461, "3 day 2 hour 1 minutes 1 sec"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.secs); got != c.want {
			t.Errorf("FormatUptime(%d) = %q, want %q", c.secs, got, c.want)
		}
	}
}
