package snapshot

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const testSecret = "123456"

func validRequest() UpdateRequest {
	return UpdateRequest{
		Password: testSecret,
		Hostname: "h1",
		GPU:      `["123 : /usr/bin/x"]`,
		Net:      `{"eth0":"192.168.1.10"}`,
		Mem:      `{"total":"8.1 GB","used":"3.9 GB"}`,
		Swap:     `{"total":"2.1 GB","used":"37.0 MB"}`,
		CPU:      `{"user":0.1,"system":0.2}`,
		Other:    `{"nowtime":"2024-01-01 12:00:00"}`,
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)
	s, err := Normalize(validRequest(), testSecret, now)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if s.Hostname != "h1" {
		t.Errorf("hostname = %q, want h1", s.Hostname)
	}
	if want := []string{"123 : /usr/bin/x"}; !reflect.DeepEqual(s.GPU, want) {
		t.Errorf("gpu = %#v, want %#v", s.GPU, want)
	}
	if v, ok := s.CPUValue("user"); !ok || v != 0.1 {
		t.Errorf("cpu.user = %v (%v), want 0.1", v, ok)
	}
	if v, ok := s.CPUValue("system"); !ok || v != 0.2 {
		t.Errorf("cpu.system = %v (%v), want 0.2", v, ok)
	}
	if !s.ReceivedAt.Equal(now) {
		t.Errorf("received_at = %v, want %v", s.ReceivedAt, now)
	}
}

func TestNormalizeWrongPassword(t *testing.T) {
	req := validRequest()
	req.Password = "0000"
	if _, err := Normalize(req, testSecret, time.Now()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*UpdateRequest)
	}{
		{"missing hostname", func(r *UpdateRequest) { r.Hostname = "" }},
		{"missing net", func(r *UpdateRequest) { r.Net = "" }},
		{"missing cpu", func(r *UpdateRequest) { r.CPU = "" }},
		{"undecodable cpu", func(r *UpdateRequest) { r.CPU = `{"user":` }},
		{"cpu not an object", func(r *UpdateRequest) { r.CPU = `[1,2]` }},
		{"undecodable other", func(r *UpdateRequest) { r.Other = `nowtime` }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if _, err := Normalize(req, testSecret, time.Now()); !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("err = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestParseSlotList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"absent", "", []string{"null"}},
		{"single", `["123 : /usr/bin/x"]`, []string{"123 : /usr/bin/x"}},
		{"multiple", `["123 : /a", "456 : /b", "null"]`, []string{"123 : /a", "456 : /b", "null"}},
		{"sentinel only", `[null]`, []string{"null"}},
		{"quotes only", `""`, []string{"null"}},
		{"empty list", `[]`, []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseSlotList(tc.raw); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseSlotList(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSlots(t *testing.T) {
	now := time.Now()
	gpu := []string{
		"123 : /usr/bin/x",
		"null",
		"no running processes found",
		` : /orphan`,
		`456 : `,
		"",
	}
	got := Slots("h1", gpu, now)
	want := []SlotRecord{
		{Hostname: "h1", PID: "123", Path: "/usr/bin/x", ObservedAt: now},
		{Hostname: "h1", PID: "0", Path: "/orphan", ObservedAt: now},
		{Hostname: "h1", PID: "456", Path: "null", ObservedAt: now},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slots = %#v, want %#v", got, want)
	}
}

func TestSlotPID(t *testing.T) {
	cases := []struct {
		slot string
		want string
	}{
		{"123 : /usr/bin/x", "123"},
		{"null", "null"},
		{" : ", ""},
		{"", ""},
		{" : /late", "/late"},
	}
	for _, tc := range cases {
		if got := SlotPID(tc.slot); got != tc.want {
			t.Errorf("SlotPID(%q) = %q, want %q", tc.slot, got, tc.want)
		}
	}
}

func TestNowTimeToken(t *testing.T) {
	s := &Snapshot{Other: map[string]any{"nowtime": "2024-01-01 12:00:00"}}
	if tok, ok := s.NowTimeToken(); !ok || tok != "12:00:00" {
		t.Errorf("NowTimeToken = %q (%v), want 12:00:00", tok, ok)
	}
	s = &Snapshot{Other: map[string]any{"nowtime": "single-token"}}
	if _, ok := s.NowTimeToken(); ok {
		t.Error("NowTimeToken accepted a value without a time token")
	}
	s = &Snapshot{Other: map[string]any{}}
	if _, ok := s.NowTimeToken(); ok {
		t.Error("NowTimeToken accepted a snapshot without nowtime")
	}
}
