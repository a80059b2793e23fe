package embedding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("deploy the service to staging. ", 200)

	tests := []struct {
		name      string
		text      string
		maxTokens int
		wantSame  bool
	}{
		{name: "empty", text: "", maxTokens: 10, wantSame: true},
		{name: "disabled", text: long, maxTokens: 0, wantSame: true},
		{name: "short fits", text: "hello world", maxTokens: 10, wantSame: true},
		{name: "long cut", text: long, maxTokens: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.text, tt.maxTokens)
			if tt.wantSame {
				assert.Equal(t, tt.text, got)
				return
			}
			assert.Less(t, len(got), len(tt.text))
			assert.True(t, strings.HasPrefix(tt.text, got))
			assert.LessOrEqual(t, CountTokens(got), tt.maxTokens)
		})
	}
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 2, CountTokens("hello world"))
}
