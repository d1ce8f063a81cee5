package snapshot

import (
	"context"
	"errors"
	"math"

	"github.com/shirou/gopsutil/process"
)

// SystemSource acquires snapshots from the local OS process table via
// gopsutil. Counters that cannot be read for an individual process are
// reported as zero, except CPU percent which is reported as NaN so the
// table can order unreadable values after readable ones.
type SystemSource struct{}

// NewSystemSource returns a Source backed by the local process table.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// Acquire enumerates the process table. Processes that disappear while
// being read are skipped; an enumeration failure is an AcquisitionError.
func (s *SystemSource) Acquire(ctx context.Context) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, &AcquisitionError{Err: err}
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, &AcquisitionError{Err: err}
		}

		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Exited between enumeration and read.
			continue
		}

		e := Entry{
			PID:  p.Pid,
			Name: name,
			// GPU usage needs vendor tooling (nvidia-smi or the AMD
			// equivalent); reported as zero until a probe exists.
			GPUPercent: 0,
		}

		if ppid, err := p.PpidWithContext(ctx); err == nil && ppid > 0 {
			e.ParentPID = ppid
			e.HasParent = true
		}

		if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
			e.CPUPercent = cpu
		} else {
			e.CPUPercent = math.NaN()
		}

		if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			e.MemoryRSS = mem.RSS
		}

		if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
			e.DiskReadBytes = io.ReadBytes
			e.DiskWriteBytes = io.WriteBytes
		}

		if nio, err := p.NetIOCountersWithContext(ctx, false); err == nil && len(nio) > 0 {
			e.NetRecvBytes = nio[0].BytesRecv
			e.NetSentBytes = nio[0].BytesSent
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// SystemTerminator terminates processes on the local system.
type SystemTerminator struct{}

// NewSystemTerminator returns a Terminator for the local system.
func NewSystemTerminator() *SystemTerminator {
	return &SystemTerminator{}
}

// Terminate forcefully kills the process with the given PID.
func (t *SystemTerminator) Terminate(pid int32) (bool, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return false, &TerminationError{PID: pid, Err: ErrNoSuchProcess}
		}
		return false, &TerminationError{PID: pid, Err: err}
	}

	if err := p.Kill(); err != nil {
		return false, &TerminationError{PID: pid, Err: err}
	}
	return true, nil
}
