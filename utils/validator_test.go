package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agentInput struct {
	FullName         string `validate:"required,max=100"`
	AgentPhoneNumber string `validate:"omitempty,e164"`
}

func TestValidateStructE164(t *testing.T) {
	assert.NoError(t, ValidateStruct(agentInput{FullName: "Jordan Reyes", AgentPhoneNumber: "+17785552345"}))
	assert.NoError(t, ValidateStruct(agentInput{FullName: "Jordan Reyes"}))

	err := ValidateStruct(agentInput{FullName: "Jordan Reyes", AgentPhoneNumber: "778-555-2345"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid phone number")
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(agentInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullname is required")
}
