package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatusTransitions(t *testing.T) {
	all := []SessionStatus{
		SessionCreated,
		SessionCaseStudyInProgress,
		SessionCaseStudyCompleted,
		SessionTbeiInProgress,
		SessionCompleted,
	}

	allowed := map[SessionStatus]SessionStatus{
		SessionCreated:             SessionCaseStudyInProgress,
		SessionCaseStudyInProgress: SessionCaseStudyCompleted,
		SessionCaseStudyCompleted:  SessionTbeiInProgress,
		SessionTbeiInProgress:      SessionCompleted,
	}

	// 除转换表列出的后继外，任意组合都必须被拒绝
	for _, from := range all {
		for _, to := range all {
			expected := allowed[from] == to
			assert.Equal(t, expected, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestSessionCompletedIsTerminal(t *testing.T) {
	assert.Empty(t, SessionCompleted.AllowedNext())
}

func TestSessionStatusValid(t *testing.T) {
	assert.True(t, SessionCreated.Valid())
	assert.True(t, SessionCompleted.Valid())
	assert.False(t, SessionStatus("archived").Valid())
	assert.False(t, SessionStatus("").Valid())
}

func TestSelfTransitionRejected(t *testing.T) {
	for status := range SessionTransitions {
		assert.False(t, status.CanTransitionTo(status), "self transition %s", status)
	}
}

func TestIsRequiredCompetency(t *testing.T) {
	assert.True(t, IsRequiredCompetency(CompetencyDigitalTransformation))
	assert.True(t, IsRequiredCompetency(CompetencyTalentDevelopment))
	assert.False(t, IsRequiredCompetency("leadership"))
}
