package configs

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simbids/skeleton"
)

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"multi_ses_qsiprep.yaml", "no_ses_qsiprep.yaml"}, Names())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"multi_ses_qsiprep.yaml", "multi_ses_qsiprep"} {
		data, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	_, err := Lookup("missing.yaml")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Lookup("../io_spec.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBundledSkeletonsParse(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := Lookup(name)
			require.NoError(t, err)
			m, err := skeleton.Decode(data)
			require.NoError(t, err)
			d, err := skeleton.Parse(m)
			require.NoError(t, err)
			subjects, err := skeleton.Resolve(d)
			require.NoError(t, err)
			assert.Len(t, subjects, 2)
			assert.Equal(t, "sub-01", subjects[0].Label)
		})
	}
}

func TestLookupFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"bids_mri/custom.yaml": {Data: []byte(`"01": {anat: {suffix: T1w}}`)}}
	data, err := LookupFS(fsys, "custom")
	require.NoError(t, err)
	assert.Contains(t, string(data), "T1w")
}

func TestQuerySpec(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(QuerySpec()), `"derivatives"`)
}
