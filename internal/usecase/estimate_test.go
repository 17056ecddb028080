package usecase

import (
	"testing"

	"smart-opd/internal/domain/entity"
)

func TestEstimateWaitMinutes(t *testing.T) {
	tests := []struct {
		name     string
		status   entity.TokenStatus
		position int
		serving  bool
		avg      int
		want     int
	}{
		{"fifth in line", entity.TokenStatusWaiting, 5, true, 10, 50},
		{"first in line, nobody serving", entity.TokenStatusWaiting, 0, false, 10, 0},
		{"first in line while serving", entity.TokenStatusWaiting, 0, true, 10, 5},
		{"first in line, longer slots", entity.TokenStatusWaiting, 0, true, 15, 7},
		{"second in line", entity.TokenStatusWaiting, 1, true, 10, 10},
		{"called token", entity.TokenStatusCalled, 0, true, 10, 0},
		{"completed token", entity.TokenStatusCompleted, 3, true, 10, 0},
		{"missed token", entity.TokenStatusMissed, 2, false, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateWaitMinutes(tt.status, tt.position, tt.serving, tt.avg)
			if got != tt.want {
				t.Errorf("estimateWaitMinutes(%q, %d, %v, %d) = %d, want %d",
					tt.status, tt.position, tt.serving, tt.avg, got, tt.want)
			}
		})
	}
}
