package layout

import (
	"path"
	"slices"
	"strings"

	"github.com/meigma/simbids/skeleton"
)

// Column keys are stored on the file record instead of the entity table.
const (
	KeyDatatype  = "datatype"
	KeySuffix    = "suffix"
	KeyExtension = "extension"
)

// longNames maps entity names to their filename keys.
var longNames = map[string]string{
	"subject":                "sub",
	"session":                "ses",
	"acquisition":            "acq",
	"direction":              "dir",
	"reconstruction":         "rec",
	"modality":               "mod",
	"inversion":              "inv",
	"magnetization_transfer": "mt",
	"mtransfer":              "mt",
	"contrast_enhancement":   "ce",
	"ceagent":                "ce",
	"processing":             "proc",
	"resolution":             "res",
	"density":                "den",
	"denoising":              "den",
	"description":            "desc",
	"tracer":                 "trc",
	"hemisphere":             "hemi",
}

// canonicalOrder is the order entities take in a BIDS filename.
var canonicalOrder = []string{
	"sub", "ses", "sample", "task", "tracksys", "acq", "nuc", "voi", "ce",
	"trc", "stain", "rec", "dir", "run", "mod", "echo", "flip", "inv", "mt",
	"part", "proc", "hemi", "space", "split", "recording", "chunk", "seg",
	"res", "den", "label", "desc", "from", "to", "mode", "cohort",
}

// EntityKey returns the filename key for an entity name. Short keys and
// unknown names are returned unchanged.
func EntityKey(name string) string {
	if k, ok := longNames[name]; ok {
		return k
	}
	return name
}

// SortEntities orders entities canonically. Unknown keys follow the known
// ones in their original order.
func SortEntities(entities []skeleton.Entity) []skeleton.Entity {
	out := slices.Clone(entities)
	rank := func(k string) int {
		if i := slices.Index(canonicalOrder, k); i >= 0 {
			return i
		}
		return len(canonicalOrder)
	}
	slices.SortStableFunc(out, func(a, b skeleton.Entity) int {
		return rank(a.Key) - rank(b.Key)
	})
	return out
}

// File is one indexed dataset file.
type File struct {
	// Path is slash-separated and relative to the indexed root.
	Path string

	// Datatype is the name of the directory holding the file below the
	// subject or session directory, such as anat. Empty for files at the
	// subject or dataset level.
	Datatype string

	Suffix    string
	Extension string

	// Entities are the key-value pairs of the filename in filename order,
	// including sub and ses.
	Entities []skeleton.Entity
}

// Filename returns the base name of the file.
func (f File) Filename() string {
	return path.Base(f.Path)
}

// Entity returns the value of the entity key, which may be a long name.
func (f File) Entity(key string) (string, bool) {
	key = EntityKey(key)
	for _, e := range f.Entities {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Stem returns the file path without its extension.
func (f File) Stem() string {
	return strings.TrimSuffix(f.Path, f.Extension)
}

// ParseFilename splits a BIDS filename into entities, suffix and
// extension. The extension starts at the first dot. ok is false for names
// that do not follow the pattern, such as dataset_description.json.
func ParseFilename(name string) (entities []skeleton.Entity, suffix, ext string, ok bool) {
	stem := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		stem, ext = name[:i], name[i:]
	}
	parts := strings.Split(stem, "_")
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "sub-") {
		return nil, "", "", false
	}
	suffix = parts[len(parts)-1]
	if suffix == "" || strings.Contains(suffix, "-") {
		return nil, "", "", false
	}
	for _, part := range parts[:len(parts)-1] {
		key, value, found := strings.Cut(part, "-")
		if !found || key == "" || value == "" {
			return nil, "", "", false
		}
		entities = append(entities, skeleton.Entity{Key: key, Value: value})
	}
	return entities, suffix, ext, true
}

// datatypeOf returns the datatype directory for a slash-separated path
// relative to the dataset root.
func datatypeOf(rel string) string {
	dirs := strings.Split(path.Dir(rel), "/")
	if len(dirs) < 2 {
		return ""
	}
	last := dirs[len(dirs)-1]
	if strings.HasPrefix(last, "sub-") || strings.HasPrefix(last, "ses-") {
		return ""
	}
	return last
}
