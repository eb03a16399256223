package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessageSequence(t *testing.T) {
	ok := []campaignMessageInput{
		{DayNumber: 1, SequenceOrder: 1, MessageTemplate: "a"},
		{DayNumber: 1, SequenceOrder: 2, MessageTemplate: "b"},
		{DayNumber: 3, SequenceOrder: 3, MessageTemplate: "c"},
	}
	assert.NoError(t, validateMessageSequence(ok))

	assert.NoError(t, validateMessageSequence(nil))
	assert.NoError(t, validateMessageSequence(ok[:1]))
}

func TestValidateMessageSequenceRepeatedOrder(t *testing.T) {
	messages := []campaignMessageInput{
		{DayNumber: 1, SequenceOrder: 1, MessageTemplate: "a"},
		{DayNumber: 1, SequenceOrder: 1, MessageTemplate: "b"},
	}
	err := validateMessageSequence(messages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence_order")
}

func TestValidateMessageSequenceDecreasingDay(t *testing.T) {
	messages := []campaignMessageInput{
		{DayNumber: 3, SequenceOrder: 1, MessageTemplate: "a"},
		{DayNumber: 1, SequenceOrder: 2, MessageTemplate: "b"},
	}
	err := validateMessageSequence(messages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "day_number")
}

func TestToCampaignMessages(t *testing.T) {
	inputs := []campaignMessageInput{
		{DayNumber: 1, SequenceOrder: 1, MessageTemplate: "Hi {{first_name}}"},
		{DayNumber: 2, SequenceOrder: 2, MessageTemplate: "Still there?"},
	}

	out := toCampaignMessages(42, inputs)
	require.Len(t, out, 2)
	assert.Equal(t, uint(42), out[0].CampaignID)
	assert.Equal(t, "Hi {{first_name}}", out[0].MessageTemplate)
	assert.Equal(t, 2, out[1].SequenceOrder)
}
