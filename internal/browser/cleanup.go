package browser

import (
	"context"
	"os"
	"strings"

	"github.com/maltedev/wheel-catalog-scraper/internal/ratelimit"
	"github.com/shirou/gopsutil/v4/process"
)

type proc interface {
	NameWithContext(ctx context.Context) (string, error)
	KillWithContext(ctx context.Context) error
}

var listProcesses = func(ctx context.Context) ([]proc, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	out := make([]proc, 0, len(procs))
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Cleanup releases everything the session touched. The three steps run
// independently: closing the browser, killing leftover browser processes and
// removing the profile directory. Failures are logged and never returned.
func (s *Session) Cleanup(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if err := s.Close(); err != nil {
		s.logger.Warn("failed to close browser", "error", err)
	}

	ratelimit.Fixed{}.Wait(ctx, s.opts.CleanupDelay)

	killed, err := KillMatching(ctx, s.opts.ProcessFilter)
	if err != nil {
		s.logger.Warn("failed to list processes", "error", err)
	} else {
		s.logger.Info("terminated browser processes", "filter", s.opts.ProcessFilter, "count", killed)
	}

	if s.profileDir != "" {
		if err := os.RemoveAll(s.profileDir); err != nil {
			s.logger.Warn("failed to remove profile directory", "dir", s.profileDir, "error", err)
		} else {
			s.logger.Info("removed profile directory", "dir", s.profileDir)
		}
	}
}

// KillMatching kills every process whose name contains filter, ignoring case.
// Processes that vanish or refuse the signal are skipped.
func KillMatching(ctx context.Context, filter string) (int, error) {
	if filter == "" {
		return 0, nil
	}

	procs, err := listProcesses(ctx)
	if err != nil {
		return 0, err
	}

	filter = strings.ToLower(filter)
	killed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			continue
		}
		killed++
	}
	return killed, nil
}
