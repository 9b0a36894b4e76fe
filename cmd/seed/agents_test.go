package main

import (
	"testing"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentSeeder_EmbeddedDataIsValid(t *testing.T) {
	data, err := (&AgentSeeder{}).loadSeedData()
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, data.OwnerID)
	require.NotEmpty(t, data.Agents)

	ids := map[uuid.UUID]bool{}
	for _, a := range data.Agents {
		assert.NoError(t, validateSeed(a), a.BasicInfo.Title)
		assert.False(t, ids[a.ID], "duplicate id %s", a.ID)
		ids[a.ID] = true
	}
}

func TestValidateSeed_SubmittedMustBeComplete(t *testing.T) {
	seed := AgentSeed{
		ID:     uuid.New(),
		Status: agents.StatusPendingReview,
		Draft:  wizard.Draft{BasicInfo: wizard.BasicInfo{Title: "Half done"}},
	}

	assert.ErrorIs(t, validateSeed(seed), wizard.ErrIncomplete)

	seed.Status = agents.StatusDraft
	assert.NoError(t, validateSeed(seed))
}

func TestListSeeders_Sorted(t *testing.T) {
	list := listSeeders()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name(), list[i].Name())
	}
	_, ok := getSeeder("agents")
	assert.True(t, ok)
}

func TestValidateSeed_RequiresID(t *testing.T) {
	seed := AgentSeed{
		Status: agents.StatusDraft,
		Draft:  wizard.Draft{BasicInfo: wizard.BasicInfo{Title: "No id"}},
	}

	assert.Error(t, validateSeed(seed))
}
