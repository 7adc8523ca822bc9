package scheduler

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2024, time.May, 6, h, m, 0, 0, time.UTC)
}

func TestFindSlot(t *testing.T) {
	tests := []struct {
		name     string
		busy     []Interval
		duration time.Duration
		want     time.Time
		wantOK   bool
	}{
		{
			name:     "empty day",
			duration: time.Hour,
			want:     at(9, 0),
			wantOK:   true,
		},
		{
			name:     "gap before first interval too short",
			busy:     []Interval{{at(9, 30), at(10, 30)}},
			duration: time.Hour,
			want:     at(10, 30),
			wantOK:   true,
		},
		{
			name:     "exact fit at the end of the window",
			busy:     []Interval{{at(9, 0), at(11, 0)}},
			duration: time.Hour,
			want:     at(11, 0),
			wantOK:   true,
		},
		{
			name:     "overlapping intervals never move the cursor back",
			busy:     []Interval{{at(9, 0), at(11, 0)}, {at(9, 30), at(10, 0)}},
			duration: 45 * time.Minute,
			want:     at(11, 0),
			wantOK:   true,
		},
		{
			name:     "unsorted input",
			busy:     []Interval{{at(10, 30), at(12, 0)}, {at(9, 0), at(9, 20)}},
			duration: time.Hour,
			want:     at(9, 20),
			wantOK:   true,
		},
		{
			name:     "interval after window does not open a gap past the end",
			busy:     []Interval{{at(9, 0), at(11, 30)}, {at(14, 0), at(15, 0)}},
			duration: time.Hour,
			wantOK:   false,
		},
		{
			name:     "interval from previous night spills into the window",
			busy:     []Interval{{at(7, 0).Add(-12 * time.Hour), at(9, 45)}},
			duration: 2 * time.Hour,
			want:     at(9, 45),
			wantOK:   true,
		},
		{
			name:     "window fully covered",
			busy:     []Interval{{at(8, 0), at(13, 0)}},
			duration: 15 * time.Minute,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindSlot(at(9, 0), at(12, 0), tt.busy, tt.duration)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v (start %v)", tt.wantOK, ok, got)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Expected start %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFindSlot_DoesNotReorderInput(t *testing.T) {
	busy := []Interval{{at(10, 30), at(12, 0)}, {at(9, 0), at(9, 20)}}
	FindSlot(at(9, 0), at(12, 0), busy, time.Hour)
	if !busy[0].Start.Equal(at(10, 30)) {
		t.Error("Expected caller's slice to be left untouched")
	}
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{at(9, 0), at(10, 0)}
	if !a.Overlaps(Interval{at(9, 30), at(11, 0)}) {
		t.Error("Expected overlap")
	}
	if a.Overlaps(Interval{at(10, 0), at(11, 0)}) {
		t.Error("Expected touching intervals not to overlap")
	}
}
