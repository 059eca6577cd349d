package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NullSlot is the sentinel slot value a host reports when no GPU process
// occupies a slot, and the sentinel path recorded for a slot without one.
const NullSlot = "null"

var (
	// ErrUnauthorized marks an update carrying a bad or missing password.
	ErrUnauthorized = errors.New("bad or missing password")
	// ErrMalformedPayload marks an update with missing or undecodable fields.
	ErrMalformedPayload = errors.New("malformed update payload")
)

// UpdateRequest is the raw /update POST body. Agents double-encode the
// sub-documents: gpu arrives as a stringified list and each metric group as a
// JSON-encoded string.
type UpdateRequest struct {
	Password string `json:"password"`
	Hostname string `json:"hostname"`
	GPU      string `json:"gpu"`
	Net      string `json:"net"`
	Mem      string `json:"mem"`
	Swap     string `json:"swap"`
	CPU      string `json:"cpu"`
	Other    string `json:"other"`
}

// Snapshot is one host's latest reported status. The metric groups carry no
// fixed schema beyond the fields the report reads (cpu.user, cpu.system,
// other.nowtime); ReceivedAt is set from the server clock on ingest.
type Snapshot struct {
	Hostname   string         `json:"hostname"`
	GPU        []string       `json:"gpu"`
	Net        map[string]any `json:"net"`
	Mem        map[string]any `json:"mem"`
	Swap       map[string]any `json:"swap"`
	CPU        map[string]any `json:"cpu"`
	Other      map[string]any `json:"other"`
	ReceivedAt time.Time      `json:"received_at"`
}

// Normalize validates one inbound payload and produces a typed snapshot.
// A wrong password yields ErrUnauthorized, everything else that fails yields
// ErrMalformedPayload; callers answer both identically.
func Normalize(req UpdateRequest, secret string, now time.Time) (*Snapshot, error) {
	if req.Password != secret {
		return nil, ErrUnauthorized
	}
	if req.Hostname == "" {
		return nil, fmt.Errorf("%w: missing hostname", ErrMalformedPayload)
	}

	s := &Snapshot{
		Hostname:   req.Hostname,
		GPU:        ParseSlotList(req.GPU),
		ReceivedAt: now,
	}
	for _, group := range []struct {
		name string
		raw  string
		dst  *map[string]any
	}{
		{"net", req.Net, &s.Net},
		{"mem", req.Mem, &s.Mem},
		{"swap", req.Swap, &s.Swap},
		{"cpu", req.CPU, &s.CPU},
		{"other", req.Other, &s.Other},
	} {
		if group.raw == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedPayload, group.name)
		}
		if err := json.Unmarshal([]byte(group.raw), group.dst); err != nil {
			return nil, fmt.Errorf("%w: undecodable %s: %v", ErrMalformedPayload, group.name, err)
		}
	}
	return s, nil
}

// ParseSlotList recovers individual slot strings from the stringified list
// agents send, e.g. `["123 : /usr/bin/python", "null"]`. Quote characters are
// stripped first, then the surrounding brackets; an empty or absent field
// yields the single sentinel slot.
func ParseSlotList(raw string) []string {
	raw = strings.ReplaceAll(raw, `"`, "")
	if raw == "" {
		return []string{NullSlot}
	}
	raw = strings.Trim(raw, "][")
	return strings.Split(raw, ", ")
}

// SlotRecord is one durable observation of a GPU slot occupied by a process.
type SlotRecord struct {
	Hostname   string
	PID        string
	Path       string
	ObservedAt time.Time
}

// Slots extracts slot observations from a parsed gpu list. Only slots with a
// pid/path separator produce a record; sentinel and empty slots are skipped.
// An empty pid part becomes "0", an empty path part becomes "null".
func Slots(hostname string, gpu []string, now time.Time) []SlotRecord {
	var recs []SlotRecord
	for _, slot := range gpu {
		if !strings.Contains(slot, ":") {
			continue
		}
		parts := strings.SplitN(slot, ":", 2)
		pid := strings.Trim(parts[0], `" `)
		path := strings.Trim(parts[1], `" `)
		if pid == "" {
			pid = "0"
		}
		if path == "" {
			path = NullSlot
		}
		recs = append(recs, SlotRecord{Hostname: hostname, PID: pid, Path: path, ObservedAt: now})
	}
	return recs
}

// SlotPID returns the process-id token of a slot string: its first non-empty
// colon-delimited field after trimming. Empty when the slot has none.
func SlotPID(slot string) string {
	for _, part := range strings.Split(slot, ":") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

// CPUValue returns the named cpu metric when present and numeric.
func (s *Snapshot) CPUValue(key string) (float64, bool) {
	v, ok := s.CPU[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// NowTimeToken returns the time-of-day token of other.nowtime, defined as the
// second space-delimited field of the free-text value.
func (s *Snapshot) NowTimeToken() (string, bool) {
	v, ok := s.Other["nowtime"]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	if !ok {
		return "", false
	}
	fields := strings.Split(str, " ")
	if len(fields) < 2 || fields[1] == "" {
		return "", false
	}
	return fields[1], true
}
