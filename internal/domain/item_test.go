package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		expected      Choice
		expectedError bool
	}{
		{
			name:     "stump yes",
			token:    "s:abc:y",
			expected: Choice{Kind: KindStump, ID: "abc", Yes: true},
		},
		{
			name:     "question no",
			token:    "q:abc:n",
			expected: Choice{Kind: KindQuestion, ID: "abc", Yes: false},
		},
		{
			name:          "unknown kind",
			token:         "x:abc:y",
			expectedError: true,
		},
		{
			name:          "unknown answer",
			token:         "s:abc:maybe",
			expectedError: true,
		},
		{
			name:          "missing id",
			token:         "s::y",
			expectedError: true,
		},
		{
			name:          "too few parts",
			token:         "s:abc",
			expectedError: true,
		},
		{
			name:          "empty",
			token:         "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := ParseToken(tt.token)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, choice)
			}
		})
	}
}

func TestEncodeToken_FitsCallbackData(t *testing.T) {
	id := "0b5f8c4e-6a55-4d8e-9a53-2f7f3c1d9e10"

	token := EncodeToken(KindQuestion, id, true)

	// room for telebot's "\f<unique>|" prefix
	assert.LessOrEqual(t, len(token), 48)

	choice, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, Choice{Kind: KindQuestion, ID: id, Yes: true}, choice)
}

func TestItem_AnswerLabel(t *testing.T) {
	yes, no := true, false

	assert.Equal(t, "Pending", (&Item{}).AnswerLabel())
	assert.Equal(t, "Yes", (&Item{Answer: &yes}).AnswerLabel())
	assert.Equal(t, "No", (&Item{Answer: &no}).AnswerLabel())
	assert.True(t, (&Item{}).Pending())
	assert.False(t, (&Item{Answer: &no}).Pending())
}
