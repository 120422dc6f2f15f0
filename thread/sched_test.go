package thread

import (
	"testing"
)

func TestSchedRunsHighestPriorityFirst(t *testing.T) {
	s := MkSched(false)
	var order []string

	low := MkThread(1, "low", PriDefault)
	high := MkThread(2, "high", PriDefault+10)
	mid := MkThread(3, "mid", PriDefault+5)

	s.Spawn(low, func() { order = append(order, "low") })
	s.Spawn(high, func() { order = append(order, "high") })
	s.Spawn(mid, func() { order = append(order, "mid") })

	s.Run()

	want := []string{"high", "mid", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedYieldReentersReadyQueue(t *testing.T) {
	s := MkSched(false)
	var order []string

	a := MkThread(1, "a", PriDefault)
	b := MkThread(2, "b", PriDefault)

	s.Spawn(a, func() {
		order = append(order, "a1")
		s.Yield(a)
		order = append(order, "a2")
	})
	s.Spawn(b, func() {
		order = append(order, "b1")
	})

	s.Run()

	want := []string{"a1", "b1", "a2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedBlockWake(t *testing.T) {
	s := MkSched(false)
	var order []string
	waiter := MkThread(1, "waiter", PriDefault)
	waker := MkThread(2, "waker", PriDefault)

	s.Spawn(waiter, func() {
		order = append(order, "waiter-start")
		s.Block(waiter)
		order = append(order, "waiter-resumed")
	})
	s.Spawn(waker, func() {
		order = append(order, "waker")
		s.Wake(waiter)
	})

	s.Run()

	want := []string{"waiter-start", "waker", "waiter-resumed"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestLockDonation(t *testing.T) {
	s := MkSched(false)
	lock := MkLock(s)

	low := MkThread(1, "low", PriDefault)
	high := MkThread(2, "high", PriDefault+20)

	var lowSawDonation bool

	s.Spawn(low, func() {
		lock.Acquire(low)
		// high only becomes ready once low holds the lock; spawned
		// earlier it would run first and take the lock uncontended.
		s.Spawn(high, func() {
			lock.Acquire(high)
			lock.Release(high)
		})
		s.Yield(low) // let high run and block on the lock, donating
		lowSawDonation = low.Priority > PriDefault
		lock.Release(low)
	})

	s.Run()

	if !lowSawDonation {
		t.Fatalf("low never received donated priority while holding the lock")
	}
	if low.Priority != PriDefault {
		t.Fatalf("low's priority after release = %d, want restored to %d", low.Priority, PriDefault)
	}
}

func TestSemaUpDown(t *testing.T) {
	s := MkSched(false)
	sema := MkSema(0, s)
	var order []string

	consumer := MkThread(1, "consumer", PriDefault)
	producer := MkThread(2, "producer", PriDefault)

	s.Spawn(consumer, func() {
		order = append(order, "consumer-wait")
		sema.Down(consumer)
		order = append(order, "consumer-resumed")
	})
	s.Spawn(producer, func() {
		order = append(order, "producer")
		sema.Up()
	})

	s.Run()

	want := []string{"consumer-wait", "producer", "consumer-resumed"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
