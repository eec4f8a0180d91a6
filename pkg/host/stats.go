package host

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Stats is one monitoring sample reduced to the fields the monitor
// shows. On a Jetson the source is tegrastats; elsewhere the kernel
// counters fill in everything but the GPU figures.
type Stats struct {
	RAMUsedMB   int
	RAMTotalMB  int
	SwapUsedMB  int
	SwapTotalMB int
	CPUPercent  int
	GPUPercent  int
	CPUTempC    float64
	GPUTempC    float64
}

// StreamStats sends one sample per interval on samples until ctx is
// canceled. The channel is closed on return.
func StreamStats(ctx context.Context, interval time.Duration, samples chan<- Stats) error {
	defer close(samples)

	if _, err := exec.LookPath("tegrastats"); err != nil {
		return streamFallback(ctx, interval, samples)
	}
	return streamTegrastats(ctx, interval, samples)
}

// streamTegrastats runs tegrastats and parses its once-per-interval
// report lines.
func streamTegrastats(ctx context.Context, interval time.Duration, samples chan<- Stats) error {
	cmd := exec.CommandContext(ctx, "tegrastats",
		"--interval", strconv.Itoa(int(interval.Milliseconds())))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start tegrastats: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		sample, parseErr := parseTegrastats(scanner.Text())
		if parseErr != nil {
			continue
		}
		select {
		case samples <- sample:
		case <-ctx.Done():
			_ = cmd.Wait()
			return nil
		}
	}
	_ = cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("tegrastats stream failed: %w", err)
	}
	return fmt.Errorf("tegrastats exited unexpectedly")
}

// streamFallback samples memory and CPU through the kernel interfaces
// on hosts without tegrastats.
func streamFallback(ctx context.Context, interval time.Duration, samples chan<- Stats) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return fmt.Errorf("failed to read memory stats: %w", err)
		}
		sample := Stats{
			RAMUsedMB:  int(vm.Used / (1024 * 1024)),
			RAMTotalMB: int(vm.Total / (1024 * 1024)),
		}
		if swap, swapErr := mem.SwapMemory(); swapErr == nil {
			sample.SwapUsedMB = int(swap.Used / (1024 * 1024))
			sample.SwapTotalMB = int(swap.Total / (1024 * 1024))
		}
		if loads, cpuErr := cpu.Percent(0, false); cpuErr == nil && len(loads) > 0 {
			sample.CPUPercent = int(loads[0])
		}

		select {
		case samples <- sample:
		case <-ctx.Done():
			return nil
		}
		select {
		case <-tick.C:
		case <-ctx.Done():
			return nil
		}
	}
}

// parseTegrastats reduces one tegrastats report line, for example
//
//	RAM 4722/30536MB (lfb 5x4MB) SWAP 0/15268MB (cached 0MB)
//	CPU [1%@729,0%@729,off,off] GR3D_FREQ 0%@[611,611]
//	cpu@50.968C gpu@49.875C ...
//
// to a Stats sample. Lines without a RAM block are rejected.
func parseTegrastats(line string) (Stats, error) {
	var stats Stats
	sawRAM := false

	fields := strings.Fields(line)
	for i, field := range fields {
		switch field {
		case "RAM":
			if i+1 < len(fields) {
				stats.RAMUsedMB, stats.RAMTotalMB = parseUsedTotalMB(fields[i+1])
				sawRAM = true
			}
		case "SWAP":
			if i+1 < len(fields) {
				stats.SwapUsedMB, stats.SwapTotalMB = parseUsedTotalMB(fields[i+1])
			}
		case "CPU":
			if i+1 < len(fields) {
				stats.CPUPercent = parseCPUAverage(fields[i+1])
			}
		case "GR3D_FREQ":
			if i+1 < len(fields) {
				stats.GPUPercent = parsePercent(fields[i+1])
			}
		}
		if strings.HasPrefix(field, "gpu@") {
			stats.GPUTempC = parseTemp(field)
		}
		if strings.HasPrefix(field, "cpu@") {
			stats.CPUTempC = parseTemp(field)
		}
	}

	if !sawRAM {
		return stats, fmt.Errorf("unrecognized tegrastats line")
	}
	return stats, nil
}

// parseUsedTotalMB parses "4722/30536MB".
func parseUsedTotalMB(s string) (used, total int) {
	s = strings.TrimSuffix(s, "MB")
	usedStr, totalStr, found := strings.Cut(s, "/")
	if !found {
		return 0, 0
	}
	used, _ = strconv.Atoi(usedStr)
	total, _ = strconv.Atoi(totalStr)
	return used, total
}

// parseCPUAverage averages the per-core loads in a tegrastats CPU
// block, "[1%@729,0%@729,off,...]". Parked cores report "off" and are
// skipped.
func parseCPUAverage(s string) int {
	s = strings.Trim(s, "[]")
	var sum, active int
	for _, core := range strings.Split(s, ",") {
		percent, _, found := strings.Cut(core, "%")
		if !found {
			continue
		}
		value, err := strconv.Atoi(percent)
		if err != nil {
			continue
		}
		sum += value
		active++
	}
	if active == 0 {
		return 0
	}
	return sum / active
}

// parsePercent parses "0%@2133" or "0%@[611,611]".
func parsePercent(s string) int {
	percent, _, found := strings.Cut(s, "%")
	if !found {
		return 0
	}
	value, _ := strconv.Atoi(percent)
	return value
}

// parseTemp parses "gpu@49.875C".
func parseTemp(s string) float64 {
	_, after, found := strings.Cut(s, "@")
	if !found {
		return 0
	}
	value, _ := strconv.ParseFloat(strings.TrimSuffix(after, "C"), 64)
	return value
}
