package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewTimerStartsRunning(t *testing.T) {
	timer := NewTimer()

	if timer.start.IsZero() {
		t.Error("NewTimer() start time is zero")
	}

	if time.Since(timer.start) > time.Second {
		t.Error("NewTimer() start time is not recent")
	}
}

func TestStageTimerDurationWithoutLap(t *testing.T) {
	timer := NewTimer()

	time.Sleep(50 * time.Millisecond)
	d := timer.Duration()

	if d < 50*time.Millisecond {
		t.Errorf("Duration() = %v, want >= 50ms", d)
	}
	if d > 500*time.Millisecond {
		t.Errorf("Duration() = %v, want a tight bound above 50ms", d)
	}
}

// A kcore-shaped pass alternates local peeling with a collective; Duration
// must report the sum across every lap plus whatever ran since the last one.
func TestStageTimerAccumulatesLaps(t *testing.T) {
	timer := NewTimer()

	time.Sleep(20 * time.Millisecond)
	peel := timer.Lap("peel")

	time.Sleep(20 * time.Millisecond)
	reduce := timer.Lap("allreduce")

	time.Sleep(20 * time.Millisecond)

	total := timer.Duration()
	if total < peel+reduce+20*time.Millisecond {
		t.Errorf("Duration() = %v, want >= sum of laps plus the running span", total)
	}
}

func TestStageTimerLapAccumulatesUnderSameName(t *testing.T) {
	timer := NewTimer()

	time.Sleep(10 * time.Millisecond)
	first := timer.Lap("round")

	time.Sleep(10 * time.Millisecond)
	timer.Lap("round")

	if got := timer.laps["round"]; got < first {
		t.Errorf(`laps["round"] = %v, want >= first lap %v`, got, first)
	}
}

func TestStageTimerObserveDuration(t *testing.T) {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_stage_timer_duration_seconds",
		Help:    "test histogram",
		Buckets: prometheus.DefBuckets,
	})

	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)
	timer.Lap("local")
	time.Sleep(10 * time.Millisecond)

	timer.ObserveDuration(histogram)

	if timer.Duration() == 0 {
		t.Error("ObserveDuration should not reset or zero the timer")
	}
}

func TestStageTimerObserveDurationVec(t *testing.T) {
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_stage_timer_duration_vec_seconds",
			Help:    "test histogram vec",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)

	timer.ObserveDurationVec(histogramVec, "kcore")

	if timer.Duration() == 0 {
		t.Error("ObserveDurationVec recorded a zero duration")
	}
}
