package skeleton

import (
	"fmt"
	"strings"
)

// Reserved keys.
const (
	KeyDescription = "dataset_description"
	KeySession     = "session"
	KeySuffix      = "suffix"
	KeyExtension   = "extension"
	KeyMetadata    = "metadata"

	// Wildcard repeats the previous subject's sessions.
	Wildcard = "*"

	// DefaultExtension is used for file entries without an extension.
	DefaultExtension = ".nii.gz"
)

// Dataset is a parsed skeleton.
type Dataset struct {
	// Description is the dataset_description mapping, or nil if absent.
	Description *Mapping

	// Subjects in declaration order.
	Subjects []Subject
}

// Subject pairs a normalized subject label with its declared sessions.
type Subject struct {
	// Label carries the sub- prefix.
	Label string
	Spec  SubjectSpec
}

// SubjectSpec is one of [SessionList], [SingleSession] or [RepeatPrevious].
type SubjectSpec interface {
	subjectSpec()
}

// SessionList is a subject declared as a list of session entries.
type SessionList []Session

// SingleSession is a subject declared as one mapping of modalities
// with no session level.
type SingleSession Session

// RepeatPrevious is a subject declared with the "*" marker.
type RepeatPrevious struct{}

func (SessionList) subjectSpec()    {}
func (SingleSession) subjectSpec()  {}
func (RepeatPrevious) subjectSpec() {}

// Session is one session entry.
type Session struct {
	// Label carries the ses- prefix, or is empty when there is no session level.
	Label      string
	Modalities []Modality
}

// Modality is a datatype directory (anat, dwi, func, fmap, ...) and its files.
type Modality struct {
	Name  string
	Files []FileEntry
}

// FileEntry describes one data file.
type FileEntry struct {
	Suffix    string
	Extension string

	// Metadata is written as a JSON sidecar when non-nil.
	Metadata any

	// Entities in declaration order.
	Entities []Entity
}

// Filename returns the data file name for the entry under prefix,
// where prefix is the subject label optionally followed by _<session>.
func (e FileEntry) Filename(prefix string) string {
	return prefix + FormatEntities(e.Entities) + "_" + e.Suffix + e.Extension
}

// SidecarName returns the JSON sidecar name for a data file.
// The extension is replaced by .json wherever it occurs in name.
func SidecarName(name, ext string) string {
	if ext == "" {
		return name + ".json"
	}
	return strings.ReplaceAll(name, ext, ".json")
}

// SubjectLabel adds the sub- prefix to id if it is missing.
func SubjectLabel(id string) string {
	if strings.HasPrefix(id, "sub-") {
		return id
	}
	return "sub-" + id
}

// SessionLabel adds the ses- prefix to id if it is missing.
func SessionLabel(id string) string {
	if strings.HasPrefix(id, "ses-") {
		return id
	}
	return "ses-" + id
}

// Prefix returns the filename prefix for files of this session.
func (s Session) Prefix(subject string) string {
	if s.Label == "" {
		return subject
	}
	return subject + "_" + s.Label
}

// Parse converts a decoded skeleton into typed values.
//
// m is not modified. Parse fails with ErrMissingField when a file entry
// has no suffix and with ErrMalformedConfig when a value has the wrong
// shape; the error names the offending location.
func Parse(m *Mapping) (*Dataset, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: empty skeleton", ErrMalformedConfig)
	}
	d := &Dataset{}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == KeyDescription {
			if pair.Value == nil {
				continue
			}
			desc, ok := pair.Value.(*Mapping)
			if !ok {
				return nil, malformed(pair.Key, "mapping", pair.Value)
			}
			d.Description = CloneMapping(desc)
			continue
		}
		label := SubjectLabel(pair.Key)
		spec, err := parseSubject(label, pair.Value)
		if err != nil {
			return nil, err
		}
		d.Subjects = append(d.Subjects, Subject{Label: label, Spec: spec})
	}
	return d, nil
}

func parseSubject(label string, v any) (SubjectSpec, error) {
	switch t := v.(type) {
	case string:
		if t != Wildcard {
			return nil, malformed(label, `session list, mapping or "*"`, v)
		}
		return RepeatPrevious{}, nil
	case *Mapping:
		s, err := parseSession(label, t, false)
		if err != nil {
			return nil, err
		}
		return SingleSession(s), nil
	case []any:
		list := make(SessionList, 0, len(t))
		for i, item := range t {
			loc := fmt.Sprintf("%s[%d]", label, i)
			sm, ok := item.(*Mapping)
			if !ok {
				return nil, malformed(loc, "mapping", item)
			}
			s, err := parseSession(loc, sm, true)
			if err != nil {
				return nil, err
			}
			list = append(list, s)
		}
		return list, nil
	default:
		return nil, malformed(label, `session list, mapping or "*"`, v)
	}
}

// parseSession reads one session entry. When withLabel is false the
// session key is ignored, matching a subject without a session level.
func parseSession(loc string, m *Mapping, withLabel bool) (Session, error) {
	var s Session
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == KeySession {
			if withLabel && pair.Value != nil {
				s.Label = SessionLabel(Stringify(pair.Value))
			}
			continue
		}
		mod, err := parseModality(loc+"/"+pair.Key, pair.Key, pair.Value)
		if err != nil {
			return Session{}, err
		}
		s.Modalities = append(s.Modalities, mod)
	}
	return s, nil
}

func parseModality(loc, name string, v any) (Modality, error) {
	mod := Modality{Name: name}
	var items []any
	switch t := v.(type) {
	case *Mapping:
		items = []any{t}
	case []any:
		items = t
	case nil:
	default:
		return Modality{}, malformed(loc, "file entry or list of file entries", v)
	}
	mod.Files = make([]FileEntry, 0, len(items))
	for i, item := range items {
		em, ok := item.(*Mapping)
		if !ok {
			return Modality{}, malformed(fmt.Sprintf("%s[%d]", loc, i), "mapping", item)
		}
		entry, err := ParseFileEntry(em)
		if err != nil {
			return Modality{}, fmt.Errorf("%s[%d]: %w", loc, i, err)
		}
		mod.Files = append(mod.Files, entry)
	}
	return mod, nil
}

// ParseFileEntry reads a file entry mapping. Keys other than suffix,
// extension and metadata become entities in their declared order.
func ParseFileEntry(m *Mapping) (FileEntry, error) {
	entry := FileEntry{Extension: DefaultExtension}
	hasSuffix := false
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case KeySuffix:
			if pair.Value != nil {
				entry.Suffix = Stringify(pair.Value)
				hasSuffix = true
			}
		case KeyExtension:
			if pair.Value != nil {
				entry.Extension = Stringify(pair.Value)
			}
		case KeyMetadata:
			entry.Metadata = Clone(pair.Value)
		default:
			entry.Entities = append(entry.Entities, Entity{Key: pair.Key, Value: Stringify(pair.Value)})
		}
	}
	if !hasSuffix {
		return FileEntry{}, fmt.Errorf("%w: %s", ErrMissingField, KeySuffix)
	}
	return entry, nil
}

func malformed(loc, want string, got any) error {
	return fmt.Errorf("%w: %s: want %s, got %s", ErrMalformedConfig, loc, want, kindOf(got))
}
