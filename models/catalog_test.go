package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignCatalogIntegrity(t *testing.T) {
	require.NotEmpty(t, CampaignCatalog)

	seen := make(map[string]bool)
	for _, template := range CampaignCatalog {
		assert.NotEmpty(t, template.Name)
		assert.NotEmpty(t, template.Identifier)
		assert.False(t, seen[template.Identifier], "duplicate identifier %q", template.Identifier)
		seen[template.Identifier] = true

		require.NotEmpty(t, template.Messages, "template %q has no messages", template.Identifier)
		for i, msg := range template.Messages {
			assert.NotEmpty(t, msg.Content, "template %q message %d", template.Identifier, i)
			assert.GreaterOrEqual(t, msg.Day, 1, "template %q message %d", template.Identifier, i)
			if i > 0 {
				// Days never go backwards within a sequence
				assert.GreaterOrEqual(t, msg.Day, template.Messages[i-1].Day,
					"template %q message %d", template.Identifier, i)
			}
		}
	}
}

func TestCampaignCatalogReservedTagNotIncluded(t *testing.T) {
	// The Initial_Message campaign is seeded separately as the system
	// campaign; the catalog holds only the re-engagement sequences.
	for _, template := range CampaignCatalog {
		assert.NotEqual(t, InitialMessageTag, template.Identifier)
	}
}
