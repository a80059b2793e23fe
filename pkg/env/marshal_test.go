package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Threshold float64       `env:"THRESHOLD"`
	Turns     int           `env:"TURNS,notEmpty"`
	Enabled   bool          `env:"ENABLED"`
	Timeout   time.Duration `env:"TIMEOUT"`
	APIKey    string        `env:"API_KEY"`
	Password  string        `env:"DB_PASSWORD"`
	Name      string        `env:"NAME"`
	internal  string        `env:"INTERNAL"`
	Untagged  string
}

func TestToMap(t *testing.T) {
	got, err := ToMap(&sample{
		Threshold: 0.7,
		Turns:     10,
		Timeout:   30 * time.Second,
		APIKey:    "sk-123",
		Name:      "work bot",
		internal:  "x",
		Untagged:  "y",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"THRESHOLD":   "0.7",
		"TURNS":       "10",
		"ENABLED":     "false",
		"TIMEOUT":     "30s",
		"API_KEY":     "****",
		"DB_PASSWORD": "",
		"NAME":        "work bot",
	}, got)
}

func TestToMap_RejectsNonStruct(t *testing.T) {
	_, err := ToMap(sample{})
	assert.Error(t, err)

	n := 3
	_, err = ToMap(&n)
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	type a struct {
		B string `env:"B"`
	}
	type c struct {
		A int `env:"A"`
	}

	got, err := Marshal(&a{B: "two words"}, &c{A: 1})
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=\"two words\"\n", got)
}
