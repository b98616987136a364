package bounds

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		start, stop int
		n           int
		wantStart   int
		wantStop    int
	}{
		{"whole", 0, 10, 10, 0, 10},
		{"stop past end", 2, 99, 10, 2, 10},
		{"negative stop", 0, -1, 10, 0, 9},
		{"negative stop underflow", 0, -20, 10, 0, 0},
		{"negative start", -3, 10, 10, 7, 10},
		{"negative start underflow", -30, 10, 10, 0, 10},
		{"inverted", 8, 4, 10, 4, 4},
		{"empty text", 0, 5, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, stop := Normalize(tt.start, tt.stop, tt.n)
			if start != tt.wantStart || stop != tt.wantStop {
				t.Errorf("Normalize(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.start, tt.stop, tt.n, start, stop, tt.wantStart, tt.wantStop)
			}
		})
	}
}

func TestJoinIndex(t *testing.T) {
	tests := []struct {
		i, n int
		want int
	}{
		{0, 5, 0},
		{3, 5, 3},
		{7, 5, 5},
		{-1, 5, 5},
		{-2, 5, 4},
		{-6, 5, 0},
		{-9, 5, 0},
	}

	for _, tt := range tests {
		if got := JoinIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("JoinIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
