package derivatives

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simbids/internal/testutil"
	"github.com/meigma/simbids/skeleton"
)

func TestWriteDescription(t *testing.T) {
	fsys := memfs.New()
	testutil.WriteBillyFiles(t, fsys, "raw", map[string]string{
		"dataset_description.json": `{
			"Name": "Raw",
			"BIDSVersion": "1.6.0",
			"License": "CC0",
			"GeneratedBy": [{"Name": "dcm2niix"}],
			"DatasetLinks": {"templateflow": "/local/templateflow", "raw": "../raw"}
		}`,
	})
	t.Setenv(SingularityEnv, "docker://nipreps/simbids:0.1.0")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	desc, err := WriteDescription(fsys, "raw", "out/deriv", WithLogger(logger))
	require.NoError(t, err)

	data, err := util.ReadFile(fsys, "out/deriv/dataset_description.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"Name\": ")
	assert.JSONEq(t, `{
		"Name": "SimBIDS Simulated Outputs",
		"BIDSVersion": "1.9.0dev",
		"License": "CC0",
		"GeneratedBy": [
			{
				"Name": "SimBIDS",
				"Version": "0.1.0",
				"CodeURL": "https://github.com/nipreps/simbids/archive/0.1.0.tar.gz",
				"Container": {"Type": "singularity", "URI": "docker://nipreps/simbids:0.1.0"}
			},
			{"Name": "dcm2niix"}
		],
		"DatasetLinks": {"templateflow": "https://github.com/templateflow/templateflow", "raw": "../raw"},
		"DatasetType": "derivative",
		"HowToAcknowledge": "Include the generated boilerplate in the methods section."
	}`, string(data))
	assert.Equal(t, []string{"Name", "BIDSVersion", "License", "GeneratedBy", "DatasetLinks", "DatasetType", "HowToAcknowledge"},
		skeleton.Keys(desc))
	assert.Contains(t, logs.String(), "overwriting")
}

func TestWriteDescription_Options(t *testing.T) {
	t.Setenv(SingularityEnv, "")

	fsys := memfs.New()
	testutil.WriteBillyFiles(t, fsys, "raw", map[string]string{
		"dataset_description.json": `{"Name": "Raw", "BIDSVersion": "1.6.0"}`,
	})
	desc, err := WriteDescription(fsys, "raw", "raw/derivatives/simbids",
		WithName("Custom"),
		WithVersion("2.0.0"),
		WithDatasetLinks(skeleton.FromPairs("atlas", "https://example.org/atlas")),
		WithFields(skeleton.FromPairs("License", "MIT")),
	)
	require.NoError(t, err)

	data, err := json.Marshal(desc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Name": "Custom",
		"BIDSVersion": "1.9.0dev",
		"DatasetType": "derivative",
		"HowToAcknowledge": "Include the generated boilerplate in the methods section.",
		"GeneratedBy": [{"Name": "SimBIDS", "Version": "2.0.0", "CodeURL": "https://github.com/nipreps/simbids/archive/2.0.0.tar.gz"}],
		"DatasetLinks": {"atlas": "https://example.org/atlas"},
		"License": "MIT"
	}`, string(data))
}

func TestWriteDescription_Errors(t *testing.T) {
	t.Parallel()

	_, err := WriteDescription(memfs.New(), "raw", "out")
	require.ErrorIs(t, err, ErrDescriptionNotFound)

	fsys := memfs.New()
	testutil.WriteBillyFiles(t, fsys, "raw", map[string]string{
		"dataset_description.json": `{"GeneratedBy": "nope"}`,
	})
	_, err = WriteDescription(fsys, "raw", "out", WithContainer("x"))
	require.ErrorIs(t, err, skeleton.ErrMalformedConfig)
	_, statErr := fsys.Stat("out")
	assert.Error(t, statErr)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	orig := skeleton.FromPairs(
		"a", 1,
		"nested", skeleton.FromPairs("x", 1, "y", 2),
		"keep", "k",
	)
	update := skeleton.FromPairs(
		"a", 2,
		"nested", skeleton.FromPairs("y", 3, "z", 4),
		"keep", nil,
		"new", "n",
	)
	before := skeleton.CloneMapping(orig)

	var logs bytes.Buffer
	got := Merge(orig, update, slog.New(slog.NewTextHandler(&logs, nil)))

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 2, "nested": {"x": 1, "y": 3, "z": 4}, "keep": "k", "new": "n"}`, string(data))
	assert.Equal(t, before, orig)
	assert.Contains(t, logs.String(), "key=nested")
	assert.Contains(t, logs.String(), "key=a")
	assert.NotContains(t, logs.String(), "key=new")
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	got := Merge(nil, skeleton.FromPairs("a", 1), nil)
	assert.Equal(t, []string{"a"}, skeleton.Keys(got))

	got = Merge(skeleton.FromPairs("b", 1), nil, nil)
	assert.Equal(t, []string{"b"}, skeleton.Keys(got))
}
