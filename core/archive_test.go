package simbids

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simbids/internal/testutil"
)

func writeDataset(t *testing.T, files map[string]string) (parent, root string) {
	t.Helper()
	parent = t.TempDir()
	root = filepath.Join(parent, ArchiveRoot)
	testutil.WriteFiles(t, root, files)
	return parent, root
}

var sessionDataset = map[string]string{
	"dataset_description.json":                     `{"Name":"Default"}`,
	"sub-01/ses-01/anat/sub-01_ses-01_T1w.nii.gz":  "t1",
	"sub-01/ses-01/anat/sub-01_ses-01_T1w.json":    `{}`,
	"sub-01/ses-02/func/sub-01_ses-02_bold.nii.gz": "bold",
	"sub-02/ses-01/anat/sub-02_ses-01_T1w.nii.gz":  "t1",
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sub-01_simbids-0.1.0.zip", ArchiveName("sub-01", "", "0.1.0"))
	assert.Equal(t, "sub-01_ses-02_simbids-0.1.0.zip", ArchiveName("sub-01", "ses-02", "0.1.0"))
}

func TestArchive_Subject(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, sessionDataset)

	res, err := Archive(context.Background(), root, GranularitySubject, "0.1.0")
	require.NoError(t, err)
	require.Len(t, res.Archives, 2)
	assert.Equal(t, GranularitySubject, res.Granularity)

	assert.Equal(t, []string{
		"simbids/sub-01/ses-01/anat/sub-01_ses-01_T1w.json",
		"simbids/sub-01/ses-01/anat/sub-01_ses-01_T1w.nii.gz",
		"simbids/sub-01/ses-02/func/sub-01_ses-02_bold.nii.gz",
	}, testutil.ZipEntries(t, filepath.Join(parent, "sub-01_simbids-0.1.0.zip")))
	assert.Equal(t, []string{
		"simbids/sub-02/ses-01/anat/sub-02_ses-01_T1w.nii.gz",
	}, testutil.ZipEntries(t, filepath.Join(parent, "sub-02_simbids-0.1.0.zip")))
	assert.Equal(t, "bold", string(testutil.ZipFile(t,
		filepath.Join(parent, "sub-01_simbids-0.1.0.zip"),
		"simbids/sub-01/ses-02/func/sub-01_ses-02_bold.nii.gz")))

	// subject directories are gone, the rest of the dataset stays
	assert.Equal(t, []string{"dataset_description.json"}, testutil.ListTree(t, root))

	first := res.Archives[0]
	assert.Equal(t, "sub-01", first.Subject)
	assert.Empty(t, first.Session)
	assert.Equal(t, 3, first.Files)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, digest.FromBytes(data), first.Digest)
	assert.Equal(t, int64(len(data)), first.Size)
}

func TestArchive_Session(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, sessionDataset)

	res, err := Archive(context.Background(), root, GranularitySession, "0.1.0")
	require.NoError(t, err)
	require.Len(t, res.Archives, 3)

	assert.Equal(t, []string{
		"sub-01_ses-01_simbids-0.1.0.zip",
		"sub-01_ses-02_simbids-0.1.0.zip",
		"sub-02_ses-01_simbids-0.1.0.zip",
	}, testutil.ListTree(t, parent))
	assert.Equal(t, []string{
		"simbids/sub-01/ses-01/anat/sub-01_ses-01_T1w.json",
		"simbids/sub-01/ses-01/anat/sub-01_ses-01_T1w.nii.gz",
	}, testutil.ZipEntries(t, filepath.Join(parent, "sub-01_ses-01_simbids-0.1.0.zip")))

	_, err = os.Stat(root)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArchive_SessionFallsBackToSubject(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, map[string]string{
		"sub-01/anat/sub-01_T1w.nii.gz": "",
	})

	res, err := Archive(context.Background(), root, GranularitySession, "1.0")
	require.NoError(t, err)
	require.Len(t, res.Archives, 1)
	assert.Equal(t, "sub-01_simbids-1.0.zip", res.Archives[0].Name)
	assert.Equal(t, []string{"simbids/sub-01/anat/sub-01_T1w.nii.gz"},
		testutil.ZipEntries(t, filepath.Join(parent, "sub-01_simbids-1.0.zip")))
}

func TestArchive_SessionKeepsSessionlessFiles(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, map[string]string{
		"sub-01/anat/sub-01_T1w.nii.gz":              "t1",
		"sub-01/ses-01/dwi/sub-01_ses-01_dwi.nii.gz": "dwi",
		"sub-02/ses-01/dwi/sub-02_ses-01_dwi.nii.gz": "dwi",
	})

	res, err := Archive(context.Background(), root, GranularitySession, "0.1.0")
	require.NoError(t, err)
	require.Len(t, res.Archives, 3)

	assert.Equal(t, []string{
		"sub-01_ses-01_simbids-0.1.0.zip",
		"sub-01_simbids-0.1.0.zip",
		"sub-02_ses-01_simbids-0.1.0.zip",
	}, testutil.ListTree(t, parent))
	assert.Equal(t, []string{"simbids/sub-01/anat/sub-01_T1w.nii.gz"},
		testutil.ZipEntries(t, filepath.Join(parent, "sub-01_simbids-0.1.0.zip")))
	assert.Equal(t, []string{"simbids/sub-01/ses-01/dwi/sub-01_ses-01_dwi.nii.gz"},
		testutil.ZipEntries(t, filepath.Join(parent, "sub-01_ses-01_simbids-0.1.0.zip")))
	assert.Equal(t, "t1", string(testutil.ZipFile(t,
		filepath.Join(parent, "sub-01_simbids-0.1.0.zip"), "simbids/sub-01/anat/sub-01_T1w.nii.gz")))

	_, err = os.Stat(root)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArchive_None(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, sessionDataset)

	res, err := Archive(context.Background(), root, GranularityNone, "0.1.0")
	require.NoError(t, err)
	assert.Empty(t, res.Archives)
	assert.Len(t, testutil.ListTree(t, parent), len(sessionDataset))
}

func TestArchive_InvalidConfig(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, sessionDataset)

	_, err := Archive(context.Background(), root, Granularity(42), "0.1.0")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Archive(context.Background(), root, GranularitySubject, "")
	require.ErrorIs(t, err, ErrInvalidConfig)

	assert.Len(t, testutil.ListTree(t, parent), len(sessionDataset))
}

func TestArchive_Compression(t *testing.T) {
	t.Parallel()

	for _, c := range []Compression{CompressionDeflate, CompressionStore, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()
			parent, root := writeDataset(t, map[string]string{
				"sub-01/anat/sub-01_T1w.nii.gz": "payload payload payload",
			})
			_, err := Archive(context.Background(), root, GranularitySubject, "0.1.0", ArchiveWithCompression(c))
			require.NoError(t, err)
			got := testutil.ZipFile(t, filepath.Join(parent, "sub-01_simbids-0.1.0.zip"),
				"simbids/sub-01/anat/sub-01_T1w.nii.gz")
			assert.Equal(t, "payload payload payload", string(got))
		})
	}
}

func TestArchive_SkipsSymlinks(t *testing.T) {
	t.Parallel()

	parent, root := writeDataset(t, map[string]string{
		"sub-01/anat/sub-01_T1w.nii.gz": "",
	})
	outside := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))
	if err := os.Symlink(outside, filepath.Join(root, "sub-01", "anat", "link.nii.gz")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := Archive(context.Background(), root, GranularitySubject, "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"simbids/sub-01/anat/sub-01_T1w.nii.gz"},
		testutil.ZipEntries(t, filepath.Join(parent, "sub-01_simbids-0.1.0.zip")))
}

func TestArchive_Progress(t *testing.T) {
	t.Parallel()

	_, root := writeDataset(t, sessionDataset)

	var events []ProgressEvent
	_, err := Archive(context.Background(), root, GranularitySession, "0.1.0",
		ArchiveWithProgress(func(e ProgressEvent) { events = append(events, e) }))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, StageArchiving, events[2].Stage)
	assert.Equal(t, 3, events[2].FilesDone)
	assert.Equal(t, 3, events[2].FilesTotal)
}
