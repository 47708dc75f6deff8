package imaging

import "testing"

func TestTracker_Lifecycle(t *testing.T) {
	tracker := NewTracker(3)
	tracker.Start()

	for i := 0; i < 3; i++ {
		tracker.Increment()
	}

	// Finish must stop the render loop without hanging
	tracker.Finish()

	if got := tracker.completed.Load(); got != 3 {
		t.Errorf("completed = %d, want 3", got)
	}
}
