package simtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		in      string
		want    Granularity
		wantErr bool
	}{
		{"", GranularityNone, false},
		{"none", GranularityNone, false},
		{"subject", GranularitySubject, false},
		{"session", GranularitySession, false},
		{"bogus", 0, true},
		{"Subject", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseGranularity(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
	assert.False(t, Granularity(7).Valid())
	assert.Equal(t, "unknown", Granularity(7).String())
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)
	assert.Equal(t, "zstd", c.String())

	_, err = ParseCompression("lz4")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProgressStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "materializing", StageMaterializing.String())
	assert.Equal(t, "registering", StageRegistering.String())
	assert.Equal(t, "unknown", ProgressStage(99).String())
}
