// Package report renders the aligned status table served at /info. Layout is
// computed in two passes: first measure every rendered cell to fix the column
// widths, then emit center-padded rows host by host.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

const (
	titleName    = "name"
	titleCPUSys  = "cpu[s]"
	titleCPUUser = "cpu[u]"
	titleGPU     = "gpu"
	titleUpdated = "last updated"

	// Slot strings longer than this are cut to length and marked with "...".
	maxSlotWidth = 60

	banner = "[AI Sec Lab]"
)

type block struct {
	cpuSys  string
	cpuUser string
	updated string
	gpu     []string
}

// Render lays out the five-column status table over the given snapshot set.
// Hosts are ordered bytewise; a host contributes one line per non-empty GPU
// slot, with its name, cpu percentages and last-updated time only on the
// first line of its block. Hosts with no usable slots emit nothing, and
// snapshots missing cpu.user, cpu.system or a nowtime token are skipped so a
// dirty cache entry cannot break the whole report.
func Render(snaps map[string]*snapshot.Snapshot, now time.Time) string {
	hosts := make([]string, 0, len(snaps))
	for h := range snaps {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	nameLen := len(titleName)
	cpuSysLen := len(titleCPUSys)
	cpuUserLen := len(titleCPUUser)
	gpuLen := len(titleGPU)
	updatedLen := len(titleUpdated)

	// Measure pass. A host without slots still widens the name, cpu and
	// last-updated columns.
	blocks := make(map[string]*block, len(snaps))
	for _, h := range hosts {
		s := snaps[h]
		sysVal, okSys := s.CPUValue("system")
		userVal, okUser := s.CPUValue("user")
		updated, okTime := s.NowTimeToken()
		if !okSys || !okUser || !okTime {
			continue
		}
		b := &block{
			cpuSys:  fmt.Sprintf("%.1f%%", sysVal*100),
			cpuUser: fmt.Sprintf("%.1f%%", userVal*100),
			updated: updated,
		}
		for _, g := range s.GPU {
			if len(g) > maxSlotWidth {
				g = g[:maxSlotWidth] + "..."
			}
			if len(g) > gpuLen {
				gpuLen = len(g)
			}
			if g != "" {
				b.gpu = append(b.gpu, g)
			}
		}
		if len(h) > nameLen {
			nameLen = len(h)
		}
		if len(b.cpuSys) > cpuSysLen {
			cpuSysLen = len(b.cpuSys)
		}
		if len(b.cpuUser) > cpuUserLen {
			cpuUserLen = len(b.cpuUser)
		}
		if len(b.updated) > updatedLen {
			updatedLen = len(b.updated)
		}
		blocks[h] = b
	}

	border := borderLine(nameLen, cpuSysLen, cpuUserLen, gpuLen, updatedLen)

	// Render pass.
	var body strings.Builder
	for _, h := range hosts {
		b, ok := blocks[h]
		if !ok || len(b.gpu) == 0 {
			continue
		}
		for i, g := range b.gpu {
			name, cpuSys, cpuUser, updated := "", "", "", ""
			if i == 0 {
				name, cpuSys, cpuUser, updated = h, b.cpuSys, b.cpuUser, b.updated
			}
			fmt.Fprintf(&body, "|%s|%s|%s|%s|%s|\n",
				center(name, nameLen),
				center(cpuSys, cpuSysLen),
				center(cpuUser, cpuUserLen),
				center(g, gpuLen),
				center(updated, updatedLen))
		}
		body.WriteString(border)
	}

	header := fmt.Sprintf("|%s|%s|%s|%s|%s|\n",
		center(titleName, nameLen),
		center(titleCPUSys, cpuSysLen),
		center(titleCPUUser, cpuUserLen),
		center(titleGPU, gpuLen),
		center(titleUpdated, updatedLen))

	var out strings.Builder
	fmt.Fprintf(&out, ">>> %s %s\n", now.Format("2006-01-02 15:04:05"), banner)
	out.WriteString(border)
	out.WriteString(header)
	out.WriteString(border)
	out.WriteString(body.String())
	return out.String()
}

func borderLine(widths ...int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteByte('+')
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("+\n")
	return b.String()
}

// center pads v to width: wrap in one leading and one trailing space until
// the remaining gap drops below two, then a final left pad when still one
// short. The odd padding character always lands on the left.
func center(v string, width int) string {
	for i := (width - len(v)) / 2; i > 0; i-- {
		v = " " + v + " "
	}
	if len(v) != width {
		v = " " + v
	}
	return v
}
