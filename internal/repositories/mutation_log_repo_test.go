package repositories

import "testing"

func TestClampMutationLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unset falls back to default", 0, defaultMutationLimit},
		{"negative falls back to default", -5, defaultMutationLimit},
		{"in range passes through", 25, 25},
		{"at cap passes through", maxMutationLimit, maxMutationLimit},
		{"above cap clamps to cap", maxMutationLimit + 1, maxMutationLimit},
		{"far above cap clamps to cap", 100000, maxMutationLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampMutationLimit(tt.limit); got != tt.want {
				t.Errorf("clampMutationLimit(%d) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}
