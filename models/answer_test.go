package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswersCSV(t *testing.T) {
	datasetID := uuid.New()
	answers := []*Answer{
		NewAnswer(datasetID, "What is the average revenue?", "The average revenue is 1,090.25.", "llama3-8b-8192", false, 0),
		NewAnswer(datasetID, "How does this compare to the industry?", "Above the 2024 median.", "llama3-8b-8192", true, 3),
	}

	data, err := AnswersCSV(answers)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Question,Answer,Model,Web Search,Timestamp", lines[0])
	assert.Contains(t, lines[1], "What is the average revenue?")
	assert.Contains(t, lines[1], `"The average revenue is 1,090.25."`)
	assert.Contains(t, lines[2], "true")
}

func TestAnswersCSV_Empty(t *testing.T) {
	data, err := AnswersCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Question,Answer,Model,Web Search,Timestamp\n", string(data))
}
