package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresEvidenceService(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingEvidenceService)
}

func TestNewServer_AnswerOptional(t *testing.T) {
	srv, err := NewServer(&Ports{Evidence: &mockEvidence{}})
	require.NoError(t, err)
	assert.NotNil(t, srv)

	srv, err = NewServer(&Ports{Evidence: &mockEvidence{}, Answer: &mockAnswer{}})
	require.NoError(t, err)
	assert.NotNil(t, srv)
}
