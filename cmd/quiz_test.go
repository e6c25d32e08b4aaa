package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/quiz"
)

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers(" 1=B, 2 = a ,,3=d")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "b", "2": "a", "3": "d"}, got)

	_, err = parseAnswers("1b")
	assert.Error(t, err)
}

func TestAskQuestions(t *testing.T) {
	questions := quiz.Questions()
	var in strings.Builder
	in.WriteString("z\n")
	in.WriteString(questions[0].Correct() + "\n")
	in.WriteString("\n")

	var out bytes.Buffer
	got, err := askQuestions(strings.NewReader(in.String()), &out)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{questions[0].ID: questions[0].Correct()}, got)
	assert.Contains(t, out.String(), "choose one of")
	assert.Equal(t, 1, quiz.Score(got))
}
