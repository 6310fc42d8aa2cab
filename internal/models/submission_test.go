package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatePenaltyPoints(t *testing.T) {
	cases := []struct {
		name      string
		maxPoints int
		penalty   int
		expected  int
	}{
		{name: "no penalty", maxPoints: 100, penalty: 0, expected: 100},
		{name: "twenty percent", maxPoints: 100, penalty: 20, expected: 80},
		{name: "full penalty", maxPoints: 100, penalty: 100, expected: 0},
		{name: "rounds down", maxPoints: 75, penalty: 33, expected: 50},
		{name: "small scale", maxPoints: 10, penalty: 25, expected: 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, LatePenaltyPoints(tc.maxPoints, tc.penalty))
		})
	}
}

func TestEffectiveDeadline(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assignment := Assignment{Deadline: base}

	link := AssignmentGroup{Assignment: assignment}
	require.Equal(t, base, link.EffectiveDeadline())

	override := base.Add(48 * time.Hour)
	link.CustomDeadline = &override
	require.Equal(t, override, link.EffectiveDeadline())
}

func TestIsDeadlineExpired(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assignment := Assignment{Deadline: deadline}

	require.False(t, assignment.IsDeadlineExpired(deadline.Add(-time.Minute)))
	require.True(t, assignment.IsDeadlineExpired(deadline.Add(time.Minute)))
}

func TestSubmissionIsGraded(t *testing.T) {
	require.False(t, Submission{Status: SubmissionStatusSubmitted}.IsGraded())
	require.True(t, Submission{Status: SubmissionStatusGraded}.IsGraded())
	require.False(t, Submission{Status: SubmissionStatusReturned}.IsGraded())
}
