package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

// Metrics is one full reading of a machine's state.
type Metrics struct {
	Hostname string
	GPU      []string
	Net      map[string]string
	Mem      map[string]string
	Swap     map[string]string
	CPU      map[string]float64
	Other    map[string]string
}

// Collect gathers a complete Metrics reading from the local machine.
// withGPU disables the nvidia-smi probe on CPU-only machines, sending
// the "null" sentinel slot instead.
func Collect(now time.Time, withGPU bool) (*Metrics, error) {
	hostname, err := Hostname()
	if err != nil {
		return nil, err
	}
	slots := []string{"null"}
	if withGPU {
		slots = GPUSlots()
	}
	netInfo, err := NetInfo()
	if err != nil {
		return nil, err
	}
	memInfo, err := MemoryInfo()
	if err != nil {
		return nil, err
	}
	swapInfo, err := SwapInfo()
	if err != nil {
		return nil, err
	}
	cpuInfo, err := CPULoad(time.Second)
	if err != nil {
		return nil, err
	}
	otherInfo, err := OtherInfo(now)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		Hostname: hostname,
		GPU:      slots,
		Net:      netInfo,
		Mem:      memInfo,
		Swap:     swapInfo,
		CPU:      cpuInfo,
		Other:    otherInfo,
	}, nil
}

// BuildUpdate assembles the JSON body sent to /update. Each metric
// group travels as its own JSON-encoded string inside the envelope, so
// the collector can decode groups independently. The gpu list uses the
// ", "-joined stringified form the collector's slot parser expects.
func BuildUpdate(secret string, m *Metrics) (*snapshot.UpdateRequest, error) {
	quoted := make([]string, len(m.GPU))
	for i, slot := range m.GPU {
		quoted[i] = strconv.Quote(slot)
	}
	req := &snapshot.UpdateRequest{
		Password: secret,
		Hostname: m.Hostname,
		GPU:      "[" + strings.Join(quoted, ", ") + "]",
	}
	for _, group := range []struct {
		dst *string
		src any
	}{
		{&req.Net, m.Net},
		{&req.Mem, m.Mem},
		{&req.Swap, m.Swap},
		{&req.CPU, m.CPU},
		{&req.Other, m.Other},
	} {
		data, err := json.Marshal(group.src)
		if err != nil {
			return nil, fmt.Errorf("encode metric group: %w", err)
		}
		*group.dst = string(data)
	}
	return req, nil
}
