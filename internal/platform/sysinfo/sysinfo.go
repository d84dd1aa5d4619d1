// Package sysinfo collects host diagnostics for the setup check.
package sysinfo

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Report summarises the host the daemon is running on.
type Report struct {
	Hostname    string
	Platform    string
	Uptime      time.Duration
	TotalMemory uint64
	UsedMemory  uint64
	NumCPU      int
}

// Collect gathers host and memory information. Partial failures degrade to
// zero values rather than failing the whole report.
func Collect() *Report {
	r := &Report{
		NumCPU: runtime.NumCPU(),
	}

	if info, err := host.Info(); err == nil {
		r.Hostname = info.Hostname
		r.Platform = info.Platform + " " + info.PlatformVersion
		r.Uptime = time.Duration(info.Uptime) * time.Second
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		r.TotalMemory = vm.Total
		r.UsedMemory = vm.Used
	}

	return r
}

// Fields renders the report as structured log fields.
func (r *Report) Fields() map[string]interface{} {
	return map[string]interface{}{
		"hostname":     r.Hostname,
		"platform":     r.Platform,
		"uptime":       r.Uptime.String(),
		"total_mem_mb": r.TotalMemory / (1 << 20),
		"used_mem_mb":  r.UsedMemory / (1 << 20),
		"num_cpu":      r.NumCPU,
	}
}
