// Package agent gathers the machine facts a collector payload carries:
// GPU process slots, CPU load, memory, swap, network addresses and uptime.
package agent

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	// SlotNoProcesses is reported when the driver is up but no compute
	// process occupies any card.
	SlotNoProcesses = "no running processes found"
	// SlotDriverFailed is reported when nvidia-smi is missing or errors.
	SlotDriverFailed = "driver failed"
)

// Hostname returns the machine's hostname, trimmed.
func Hostname() (string, error) {
	hn, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("read hostname: %w", err)
	}
	return strings.TrimSpace(hn), nil
}

// GPUSlots lists one "pid : path" entry per compute process found by
// nvidia-smi, resolving each pid's working directory through pwdx. A
// machine with a working driver but idle cards yields the
// SlotNoProcesses sentinel; a machine without a usable driver yields
// SlotDriverFailed.
func GPUSlots() []string {
	out, err := exec.Command("nvidia-smi", "--query-compute-apps=pid", "--format=csv,noheader").Output()
	if err != nil {
		return []string{SlotDriverFailed}
	}
	var slots []string
	for _, line := range strings.Split(string(out), "\n") {
		pid := strings.TrimSpace(line)
		if pid == "" {
			continue
		}
		slots = append(slots, fmt.Sprintf("%s : %s", pid, processPath(pid)))
	}
	if len(slots) == 0 {
		return []string{SlotNoProcesses}
	}
	return slots
}

// processPath resolves a pid's working directory via pwdx, whose output
// looks like "1234: /home/user/run". Unresolvable pids map to "null".
func processPath(pid string) string {
	out, err := exec.Command("pwdx", pid).Output()
	if err != nil {
		return "null"
	}
	_, path, ok := strings.Cut(strings.TrimSpace(string(out)), ":")
	if !ok {
		return "null"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "null"
	}
	return path
}

// CPULoad samples /proc/stat twice over the given interval and returns
// the user, nice, system and idle shares as fractions of total jiffies.
func CPULoad(interval time.Duration) (map[string]float64, error) {
	before, err := readCPUStat()
	if err != nil {
		return nil, err
	}
	time.Sleep(interval)
	after, err := readCPUStat()
	if err != nil {
		return nil, err
	}
	var total float64
	delta := make(map[string]float64, len(after))
	for k, v := range after {
		d := v - before[k]
		delta[k] = d
		total += d
	}
	load := make(map[string]float64, 4)
	for _, k := range []string{"user", "nice", "system", "idle"} {
		if total > 0 {
			load[k] = delta[k] / total
		} else {
			load[k] = 0
		}
	}
	return load, nil
}

func readCPUStat() (map[string]float64, error) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return nil, fmt.Errorf("read /proc/stat: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 8 || fields[0] != "cpu" {
			continue
		}
		names := []string{"user", "nice", "system", "idle", "iowait", "irq", "softirq"}
		stat := make(map[string]float64, len(names))
		for i, name := range names {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parse /proc/stat field %s: %w", name, err)
			}
			stat[name] = v
		}
		return stat, nil
	}
	return nil, fmt.Errorf("no aggregate cpu line in /proc/stat")
}

// MemoryInfo returns total and used sizes for main memory, SwapInfo the
// same for swap, both formatted like "15.3 GB".
func MemoryInfo() (map[string]string, error) {
	return meminfoPair("MemTotal", "MemAvailable")
}

// SwapInfo reports swap usage in the same shape as MemoryInfo.
func SwapInfo() (map[string]string, error) {
	return meminfoPair("SwapTotal", "SwapFree")
}

func meminfoPair(totalKey, freeKey string) (map[string]string, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return nil, fmt.Errorf("read /proc/meminfo: %w", err)
	}
	values := make(map[string]float64, 2)
	for _, line := range strings.Split(string(data), "\n") {
		key, rest, ok := strings.Cut(line, ":")
		if !ok || (key != totalKey && key != freeKey) {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		kb, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse /proc/meminfo %s: %w", key, err)
		}
		values[key] = kb
	}
	total := values[totalKey]
	used := total - values[freeKey]
	if used < 0 {
		used = 0
	}
	return map[string]string{
		"total": formatGB(total),
		"used":  formatGB(used),
	}, nil
}

func formatGB(kb float64) string {
	return fmt.Sprintf("%.1f GB", kb/(1024*1024))
}

// NetInfo maps each non-loopback interface that carries an address to
// its first IP; interfaces without one map to "null".
func NetInfo() (map[string]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	info := make(map[string]string, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			info[iface.Name] = "null"
			continue
		}
		addr := addrs[0].String()
		if ip, _, err := net.ParseCIDR(addr); err == nil {
			addr = ip.String()
		}
		info[iface.Name] = addr
	}
	return info, nil
}

// OtherInfo carries the machine's uptime and the local send time, both
// as display strings.
func OtherInfo(now time.Time) (map[string]string, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return nil, fmt.Errorf("read /proc/uptime: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty /proc/uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("parse /proc/uptime: %w", err)
	}
	return map[string]string{
		"uptime":  FormatUptime(uint64(secs)),
		"nowtime": now.Format("2006-01-02 15:04:05"),
	}, nil
}

// FormatUptime renders a second count as "N day N hour N minutes N sec".
func FormatUptime(secs uint64) string {
	day := secs / 86400
	hour := secs/3600 - day*24
	min := secs/60 - day*24*60 - hour*60
	sec := secs - day*86400 - hour*3600 - min*60
	return fmt.Sprintf("%d day %d hour %d minutes %d sec", day, hour, min, sec)
}
