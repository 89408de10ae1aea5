package repository

import "testing"

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		def   int
		want  int
	}{
		{"zero takes default", 0, 50, 50},
		{"negative clamps to one", -5, 50, 1},
		{"within range", 30, 50, 30},
		{"above cap", 500, 50, 100},
		{"default above cap", 0, 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLimit(tt.limit, tt.def); got != tt.want {
				t.Fatalf("clampLimit(%d, %d)=%d want %d", tt.limit, tt.def, got, tt.want)
			}
		})
	}
}
