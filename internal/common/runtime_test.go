package common

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("INFO"))
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel(" debug "))
	assert.Equal(t, zerolog.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel(""))
}
