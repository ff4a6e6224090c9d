package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler accumulates CPU time per named scope over a reporting window and
// counts frames, so the app can log averages once per window.
type Profiler struct {
	totals map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string

	frames      int
	windowStart time.Time
	now         func() time.Time
}

func NewProfiler() *Profiler {
	p := &Profiler{
		totals: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
		now:    time.Now,
	}
	p.windowStart = p.now()
	return p
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = p.now()
	if _, seen := p.totals[name]; !seen {
		p.totals[name] = 0
		p.order = append(p.order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.totals[name] += p.now().Sub(start)
		delete(p.starts, name)
	}
}

// Scope begins name and returns the matching end, for use with defer.
func (p *Profiler) Scope(name string) func() {
	p.BeginScope(name)
	return func() { p.EndScope(name) }
}

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

// FrameDone counts a frame and reports whether the window has reached period.
func (p *Profiler) FrameDone(period time.Duration) bool {
	p.frames++
	return p.now().Sub(p.windowStart) >= period
}

func (p *Profiler) FPS() float64 {
	elapsed := p.now().Sub(p.windowStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.frames) / elapsed
}

// Reset starts a new window. Scope order is kept so reports stay stable.
func (p *Profiler) Reset() {
	for k := range p.totals {
		p.totals[k] = 0
	}
	p.frames = 0
	p.windowStart = p.now()
}

// Stats formats the per-frame average of every scope, then the counters.
func (p *Profiler) Stats() string {
	var sb strings.Builder
	frames := max(p.frames, 1)

	fmt.Fprintf(&sb, "%.1f fps over %d frame(s)\n", p.FPS(), p.frames)
	for _, name := range p.order {
		avg := p.totals[name] / time.Duration(frames)
		fmt.Fprintf(&sb, "  %-12s %.3f ms\n", name, float64(avg.Microseconds())/1000.0)
	}

	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-12s %d\n", k, p.counts[k])
	}
	return sb.String()
}
