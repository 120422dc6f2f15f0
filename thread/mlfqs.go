package thread

// Package-level MLFQS support (SPEC_FULL.md's supplemented feature,
// grounded on original_source/src/threads/thread.c's fixed-point
// load_avg/recent_cpu formulas, dropped by the distillation's spec.md
// but re-added since no Non-goal excludes an alternate scheduler). The
// original computes these in 17.14 fixed-point; Fixed_t reproduces that
// format directly rather than switching to a floating-point fallback.

// Fixed_t is a 17.14 fixed-point number, the format the original kernel
// uses for load_avg/recent_cpu so integer-only arithmetic stays exact
// enough for the priority formula.
type Fixed_t int64

const fixedF = 1 << 14

func IntToFixed(n int) Fixed_t        { return Fixed_t(n * fixedF) }
func (f Fixed_t) ToIntRound() int {
	if f < 0 {
		return int((f - fixedF/2) / fixedF)
	}
	return int((f + fixedF/2) / fixedF)
}
func (f Fixed_t) ToIntTrunc() int     { return int(f / fixedF) }
func (f Fixed_t) Add(g Fixed_t) Fixed_t { return f + g }
func (f Fixed_t) Sub(g Fixed_t) Fixed_t { return f - g }
func (f Fixed_t) AddInt(n int) Fixed_t  { return f + IntToFixed(n) }
func (f Fixed_t) MulInt(n int) Fixed_t  { return f * Fixed_t(n) }
func (f Fixed_t) DivInt(n int) Fixed_t  { return f / Fixed_t(n) }
func (f Fixed_t) Mul(g Fixed_t) Fixed_t { return Fixed_t((int64(f) * int64(g)) / fixedF) }
func (f Fixed_t) Div(g Fixed_t) Fixed_t { return Fixed_t((int64(f) * fixedF) / int64(g)) }

// TicksPerSecond is the simulated scheduler tick rate; load_avg is
// recomputed once per simulated second, recent_cpu's decay applies at
// the same cadence (the original's TIMER_FREQ).
const TicksPerSecond = 100

// loadAvg is the system-wide exponential moving average of the ready
// queue length (the original's load_avg global).
var loadAvg Fixed_t

// recomputeLoadAvg updates the global load average and every thread's
// recent_cpu/priority, the original's thread_tick MLFQS path, run once
// per simulated second by Sched_t.advanceSleepers.
func recomputeLoadAvg(s *Sched_t) {
	ready := s.ready.Len()
	if s.current != nil {
		ready++
	}
	// load_avg = (59/60)*load_avg + (1/60)*ready_threads
	coeffOld := IntToFixed(59).DivInt(60)
	coeffNew := IntToFixed(1).DivInt(60)
	loadAvg = coeffOld.Mul(loadAvg).Add(coeffNew.MulInt(ready))

	decay := loadAvg.MulInt(2).Div(loadAvg.MulInt(2).AddInt(1))
	for e := s.ready.Front(); e != nil; e = e.Next() {
		recomputeOne(e.Value.(*Thread_t), decay)
	}
	if s.current != nil {
		recomputeOne(s.current, decay)
	}
}

func recomputeOne(t *Thread_t, decay Fixed_t) {
	// recent_cpu = decay*recent_cpu + nice
	t.RecentCpu = decay.Mul(t.RecentCpu).AddInt(t.Niceness)
	// priority = PRI_MAX - (recent_cpu/4) - (nice*2), clamped
	pri := PriMax - t.RecentCpu.DivInt(4).ToIntRound() - t.Niceness*2
	if pri < PriMin {
		pri = PriMin
	}
	if pri > PriMax {
		pri = PriMax
	}
	t.Priority = pri
	t.OrigPriority = pri
}

// TickCpu increments the running thread's recent_cpu by one, called
// once per scheduler tick while a thread occupies the CPU (the
// original's thread_tick's per-tick recent_cpu++).
func TickCpu(t *Thread_t) {
	t.RecentCpu = t.RecentCpu.AddInt(1)
}
