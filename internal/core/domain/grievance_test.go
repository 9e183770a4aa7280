package domain_test

import (
	"testing"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestGrievanceStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.GrievanceStatus
		to   domain.GrievanceStatus
		want bool
	}{
		{
			name: "assigned to in progress",
			from: domain.StatusAssigned,
			to:   domain.StatusInProgress,
			want: true,
		},
		{
			name: "in progress to resolved",
			from: domain.StatusInProgress,
			to:   domain.StatusResolved,
			want: true,
		},
		{
			name: "resolved to closed",
			from: domain.StatusResolved,
			to:   domain.StatusClosed,
			want: true,
		},
		{
			name: "backward from resolved to assigned",
			from: domain.StatusResolved,
			to:   domain.StatusAssigned,
			want: false,
		},
		{
			name: "backward from closed",
			from: domain.StatusClosed,
			to:   domain.StatusInProgress,
			want: false,
		},
		{
			name: "assignment edge is not a workflow transition",
			from: domain.StatusSubmitted,
			to:   domain.StatusAssigned,
			want: false,
		},
		{
			name: "skipping in progress",
			from: domain.StatusAssigned,
			to:   domain.StatusResolved,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestGrievanceStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.StatusClosed.IsTerminal())
	assert.False(t, domain.StatusAssigned.IsTerminal())
	assert.False(t, domain.StatusSubmitted.IsTerminal())
}

func TestToggleVote_TogglesOff(t *testing.T) {
	up, down := domain.ToggleVote(nil, nil, "v1", domain.VoteUp)
	assert.Equal(t, []string{"v1"}, up)
	assert.Empty(t, down)

	// Same direction again undoes the vote.
	up, down = domain.ToggleVote(up, down, "v1", domain.VoteUp)
	assert.Empty(t, up)
	assert.Empty(t, down)
}

func TestToggleVote_SwitchesSides(t *testing.T) {
	up, down := domain.ToggleVote([]string{"v1", "v2"}, nil, "v1", domain.VoteDown)
	assert.Equal(t, []string{"v2"}, up)
	assert.Equal(t, []string{"v1"}, down)

	// Never present in both sets at once, whatever the sequence.
	for _, dir := range []domain.VoteDirection{domain.VoteUp, domain.VoteDown, domain.VoteDown, domain.VoteUp} {
		up, down = domain.ToggleVote(up, down, "v1", dir)
		inUp := false
		for _, id := range up {
			if id == "v1" {
				inUp = true
			}
		}
		inDown := false
		for _, id := range down {
			if id == "v1" {
				inDown = true
			}
		}
		assert.False(t, inUp && inDown)
	}
}

func TestToggleVote_LeavesOtherVotersAlone(t *testing.T) {
	up, down := domain.ToggleVote([]string{"a"}, []string{"b"}, "c", domain.VoteDown)
	assert.Equal(t, []string{"a"}, up)
	assert.ElementsMatch(t, []string{"b", "c"}, down)
}
