package simbids

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simbids/internal/testutil"
	"github.com/meigma/simbids/skeleton"
)

func materializeString(t *testing.T, src string, opts ...MaterializeOption) (*MaterializeResult, []string) {
	t.Helper()
	fsys := memfs.New()
	res, err := MaterializeBytes(context.Background(), fsys, "simbids", []byte(src), opts...)
	require.NoError(t, err)
	return res, testutil.ListBilly(t, fsys, "simbids")
}

func TestMaterialize_SingleSubject(t *testing.T) {
	t.Parallel()

	_, files := materializeString(t, `{"01": {"anat": {"suffix": "T1w"}}}`)
	assert.Equal(t, []string{
		"dataset_description.json",
		"sub-01/anat/sub-01_T1w.nii.gz",
	}, files)
}

func TestMaterialize_SessionNesting(t *testing.T) {
	t.Parallel()

	_, files := materializeString(t, `{"01": [{"session": "01", "anat": {"suffix": "T1w"}}]}`)
	assert.Equal(t, []string{
		"dataset_description.json",
		"sub-01/ses-01/anat/sub-01_ses-01_T1w.nii.gz",
	}, files)
}

func TestMaterialize_EntityOrderIsStable(t *testing.T) {
	t.Parallel()

	src := `
"01":
  func:
    - {suffix: bold, task: rest, acq: mb, run: 1}
    - {suffix: bold, run: 2, task: rest, acq: mb}
`
	want := []string{
		"dataset_description.json",
		"sub-01/func/sub-01_run-2_task-rest_acq-mb_bold.nii.gz",
		"sub-01/func/sub-01_task-rest_acq-mb_run-1_bold.nii.gz",
	}
	for range 3 {
		_, files := materializeString(t, src)
		assert.Equal(t, want, files)
	}
}

func TestMaterialize_SidecarOnlyWithMetadata(t *testing.T) {
	t.Parallel()

	fsys := memfs.New()
	src := `
sub-01:
  dwi:
    - suffix: dwi
      metadata: {PhaseEncodingDirection: j-, TotalReadoutTime: 0.05}
    - {suffix: dwi, extension: .bval}
    - {suffix: sbref, extension: .nii, metadata: {}}
`
	_, err := MaterializeBytes(context.Background(), fsys, "out", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dataset_description.json",
		"sub-01/dwi/sub-01_dwi.bval",
		"sub-01/dwi/sub-01_dwi.json",
		"sub-01/dwi/sub-01_dwi.nii.gz",
		"sub-01/dwi/sub-01_sbref.json",
		"sub-01/dwi/sub-01_sbref.nii",
	}, testutil.ListBilly(t, fsys, "out"))

	data, err := util.ReadFile(fsys, "out/sub-01/dwi/sub-01_dwi.json")
	require.NoError(t, err)
	assert.Equal(t, `{"PhaseEncodingDirection":"j-","TotalReadoutTime":0.05}`, string(data))

	data, err = util.ReadFile(fsys, "out/sub-01/dwi/sub-01_sbref.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	data, err = util.ReadFile(fsys, "out/sub-01/dwi/sub-01_dwi.nii.gz")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMaterialize_DatasetDescription(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()
		fsys := memfs.New()
		_, err := MaterializeBytes(context.Background(), fsys, "ds", []byte(`{}`))
		require.NoError(t, err)
		data, err := util.ReadFile(fsys, "ds/dataset_description.json")
		require.NoError(t, err)
		assert.Equal(t, "{\n    \"Name\": \"Default\",\n    \"BIDSVersion\": \"1.6.0\"\n}", string(data))
	})

	t.Run("from skeleton", func(t *testing.T) {
		t.Parallel()
		fsys := memfs.New()
		src := `{"dataset_description": {"Name": "Custom", "BIDSVersion": "1.9.0", "Authors": ["a"]}, "01": {"anat": {"suffix": "T1w"}}}`
		_, err := MaterializeBytes(context.Background(), fsys, "ds", []byte(src))
		require.NoError(t, err)
		data, err := util.ReadFile(fsys, "ds/dataset_description.json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"Name": "Custom", "BIDSVersion": "1.9.0", "Authors": ["a"]}`, string(data))
	})

	t.Run("option default", func(t *testing.T) {
		t.Parallel()
		fsys := memfs.New()
		desc := skeleton.FromPairs("Name", "Opt", "BIDSVersion", "1.8.0")
		_, err := MaterializeBytes(context.Background(), fsys, "ds", []byte(`{}`), MaterializeWithDefaultDescription(desc))
		require.NoError(t, err)
		data, err := util.ReadFile(fsys, "ds/dataset_description.json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"Name": "Opt", "BIDSVersion": "1.8.0"}`, string(data))
	})
}

func TestMaterialize_Wildcard(t *testing.T) {
	t.Parallel()

	src := `
"01":
  - session: pre
    anat: {suffix: T1w}
  - session: post
    anat: {suffix: T1w}
"02": "*"
`
	_, files := materializeString(t, src)
	assert.Equal(t, []string{
		"dataset_description.json",
		"sub-01/ses-post/anat/sub-01_ses-post_T1w.nii.gz",
		"sub-01/ses-pre/anat/sub-01_ses-pre_T1w.nii.gz",
		"sub-02/ses-post/anat/sub-02_ses-post_T1w.nii.gz",
		"sub-02/ses-pre/anat/sub-02_ses-pre_T1w.nii.gz",
	}, files)
}

func TestMaterialize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"malformed", "{not: [valid", ErrMalformedConfig},
		{"missing suffix", `{"01": {"anat": {"acq": "x"}}}`, ErrMissingField},
		{"leading wildcard", `{"01": "*"}`, ErrInvalidWildcard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := memfs.New()
			_, err := MaterializeBytes(context.Background(), fsys, "ds", []byte(tt.src))
			require.ErrorIs(t, err, tt.want)

			_, statErr := fsys.Stat("ds")
			assert.Error(t, statErr, "nothing should be written on configuration errors")
		})
	}
}

func TestMaterialize_DestinationExists(t *testing.T) {
	t.Parallel()

	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll("ds", 0o750))

	_, err := MaterializeBytes(context.Background(), fsys, "ds", []byte(`{"01": {"anat": {"suffix": "T1w"}}}`))
	require.ErrorIs(t, err, ErrDestinationExists)
	assert.Empty(t, testutil.ListBilly(t, fsys, "ds"))
}

func TestMaterialize_InputUnchangedAndResidual(t *testing.T) {
	t.Parallel()

	m := skeleton.FromPairs(
		"dataset_description", skeleton.FromPairs("Name", "X", "BIDSVersion", "1.6.0"),
		"01", skeleton.FromPairs("anat", skeleton.FromPairs("suffix", "T1w", "metadata", skeleton.FromPairs("a", 1))),
		"02", "*",
	)
	before := skeleton.CloneMapping(m)

	res, err := Materialize(context.Background(), memfs.New(), "ds", m)
	require.NoError(t, err)
	assert.Equal(t, before, m)
	assert.Equal(t, before, res.Skeleton)
	assert.Equal(t, "ds", res.Root)
	assert.Equal(t, []string{
		"dataset_description.json",
		"sub-01/anat/sub-01_T1w.nii.gz",
		"sub-01/anat/sub-01_T1w.json",
		"sub-02/anat/sub-02_T1w.nii.gz",
		"sub-02/anat/sub-02_T1w.json",
	}, res.Files)

	// the residual is a copy
	res.Skeleton.Set("03", "*")
	_, ok := m.Get("03")
	assert.False(t, ok)
}

func TestMaterialize_Progress(t *testing.T) {
	t.Parallel()

	var events []ProgressEvent
	_, _ = materializeString(t, `{"01": {"anat": [{"suffix": "T1w"}, {"suffix": "T2w"}]}, "02": "*"}`,
		MaterializeWithProgress(func(e ProgressEvent) { events = append(events, e) }))

	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, StageMaterializing, e.Stage)
		assert.Equal(t, i+1, e.FilesDone)
		assert.Equal(t, 4, e.FilesTotal)
	}
	assert.Equal(t, "sub-02/anat/sub-02_T2w.nii.gz", events[3].Path)
}

func TestMaterialize_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MaterializeBytes(ctx, memfs.New(), "ds", []byte(`{"01": {"anat": {"suffix": "T1w"}}}`))
	require.ErrorIs(t, err, context.Canceled)
}
