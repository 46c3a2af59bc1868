package derivatives

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simbids/configs"
	"github.com/meigma/simbids/internal/testutil"
	"github.com/meigma/simbids/layout"
)

func newIndex(t *testing.T, files map[string]string) *layout.Index {
	t.Helper()
	fsys := memfs.New()
	testutil.WriteBillyFiles(t, fsys, "deriv", files)
	idx, err := layout.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	_, err = idx.Build(context.Background(), fsys, "deriv")
	require.NoError(t, err)
	return idx
}

func TestLoadQuerySpec(t *testing.T) {
	t.Parallel()

	spec, err := LoadQuerySpec(configs.QuerySpec(), SelectDerivatives)
	require.NoError(t, err)
	assert.Equal(t, []string{"anat_brain_mask", "anat_dseg", "dwi_preproc"}, spec.Names())

	q := spec["anat_brain_mask"]
	assert.Equal(t, "brain", q["desc"])
	assert.Nil(t, q["space"])
	assert.Contains(t, q, "space")
	assert.Equal(t, []any{".nii", ".nii.gz"}, q["extension"])
}

func TestLoadQuerySpec_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		selector string
	}{
		{"not json", `{`, "$.a"},
		{"bad selector", `{"a": {}}`, "$.a["},
		{"no match", `{"a": {}}`, "$.b"},
		{"not an object", `{"a": [1]}`, "$.a"},
		{"query not an object", `{"a": {"q": 1}}`, "$.a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadQuerySpec([]byte(tt.data), tt.selector)
			require.ErrorIs(t, err, ErrInvalidQuerySpec)
		})
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, map[string]string{
		"sub-01/anat/sub-01_desc-brain_mask.nii.gz":                          "",
		"sub-01/anat/sub-01_dseg.nii.gz":                                     "",
		"sub-01/ses-01/dwi/sub-01_ses-01_space-ACPC_desc-preproc_dwi.nii.gz": "",
		"sub-01/ses-02/dwi/sub-01_ses-02_space-ACPC_desc-preproc_dwi.nii.gz": "",
	})
	spec, err := LoadQuerySpec(configs.QuerySpec(), SelectDerivatives)
	require.NoError(t, err)

	got, err := Collect(context.Background(), idx, map[string]any{"subject": "01", "session": "01"}, spec)
	require.NoError(t, err)
	assert.Equal(t, Collection{
		"anat_brain_mask": {"sub-01/anat/sub-01_desc-brain_mask.nii.gz"},
		"anat_dseg":       {"sub-01/anat/sub-01_dseg.nii.gz"},
		"dwi_preproc":     {"sub-01/ses-01/dwi/sub-01_ses-01_space-ACPC_desc-preproc_dwi.nii.gz"},
	}, got)
}

func TestCollect_AnatFallsBackToAnySession(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, map[string]string{
		"sub-01/ses-01/anat/sub-01_ses-01_desc-brain_mask.nii.gz": "",
	})
	spec := QuerySpec{"anat_brain_mask": {"desc": "brain", "suffix": "mask"}}

	got, err := Collect(context.Background(), idx, map[string]any{"subject": "01", "session": "02"}, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-01/ses-01/anat/sub-01_ses-01_desc-brain_mask.nii.gz"}, got["anat_brain_mask"])
}

func TestCollect_Multiple(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, map[string]string{
		"sub-01/ses-01/anat/sub-01_ses-01_acq-a_T1w.nii.gz": "",
		"sub-01/ses-01/anat/sub-01_ses-01_acq-b_T1w.nii.gz": "",
		"sub-01/ses-02/anat/sub-01_ses-02_T1w.nii.gz":       "",
		"sub-01/func/sub-01_task-rest_run-1_bold.nii.gz":    "",
		"sub-01/func/sub-01_task-rest_run-2_bold.nii.gz":    "",
	})
	ctx := context.Background()

	t.Run("anat from one session keeps the first", func(t *testing.T) {
		t.Parallel()
		spec := QuerySpec{"anat_t1w": {"suffix": "T1w"}}
		got, err := Collect(ctx, idx, map[string]any{"sub": "01", "ses": "01"}, spec)
		require.NoError(t, err)
		assert.Equal(t, []string{"sub-01/ses-01/anat/sub-01_ses-01_acq-a_T1w.nii.gz"}, got["anat_t1w"])
	})

	t.Run("anat across sessions", func(t *testing.T) {
		t.Parallel()
		spec := QuerySpec{"anat_t1w": {"suffix": "T1w"}}
		_, err := Collect(ctx, idx, map[string]any{"sub": "01", "ses": "03"}, spec)
		require.ErrorIs(t, err, ErrMultipleMatches)
	})

	t.Run("non-anat", func(t *testing.T) {
		t.Parallel()
		spec := QuerySpec{"bold": {"suffix": "bold", "task": "rest"}}
		_, err := Collect(ctx, idx, map[string]any{"sub": "01"}, spec)
		require.ErrorIs(t, err, ErrMultipleMatches)

		got, err := Collect(ctx, idx, map[string]any{"sub": "01"}, spec, CollectWithAllowMultiple())
		require.NoError(t, err)
		assert.Len(t, got["bold"], 2)
	})

	t.Run("query overrides entities", func(t *testing.T) {
		t.Parallel()
		spec := QuerySpec{"bold": {"suffix": "bold", "run": 2}}
		got, err := Collect(ctx, idx, map[string]any{"subject": "01", "run": "1"}, spec)
		require.NoError(t, err)
		assert.Equal(t, []string{"sub-01/func/sub-01_task-rest_run-2_bold.nii.gz"}, got["bold"])
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		spec := QuerySpec{"dwi": {"suffix": "dwi"}}
		got, err := Collect(ctx, idx, map[string]any{"subject": "01"}, spec)
		require.NoError(t, err)
		assert.Contains(t, got, "dwi")
		assert.Nil(t, got["dwi"])
	})
}

func TestCollect_MissingSubject(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, map[string]string{"sub-01/anat/sub-01_T1w.nii.gz": ""})
	_, err := Collect(context.Background(), idx, map[string]any{"session": "01"}, QuerySpec{})
	require.ErrorIs(t, err, ErrMissingSubject)
}
