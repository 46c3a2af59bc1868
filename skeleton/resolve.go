package skeleton

import "fmt"

// ResolvedSubject is a subject with its wildcard expanded.
type ResolvedSubject struct {
	Label    string
	Sessions []Session
}

// Resolve expands the dataset's subjects into concrete session lists.
//
// A [SingleSession] becomes one session without a label. A [RepeatPrevious]
// subject receives a deep copy of the sessions resolved for the subject
// immediately before it; it fails with ErrInvalidWildcard when it is first.
func Resolve(d *Dataset) ([]ResolvedSubject, error) {
	out := make([]ResolvedSubject, 0, len(d.Subjects))
	var previous []Session
	havePrevious := false
	for _, subj := range d.Subjects {
		var sessions []Session
		switch spec := subj.Spec.(type) {
		case RepeatPrevious:
			if !havePrevious {
				return nil, fmt.Errorf("%w: %s has no preceding subject", ErrInvalidWildcard, subj.Label)
			}
			sessions = cloneSessions(previous)
		case SingleSession:
			s := Session(spec)
			s.Label = ""
			sessions = cloneSessions([]Session{s})
		case SessionList:
			sessions = cloneSessions(spec)
		default:
			return nil, fmt.Errorf("%w: %s: unknown subject spec %T", ErrMalformedConfig, subj.Label, spec)
		}
		previous = sessions
		havePrevious = true
		out = append(out, ResolvedSubject{Label: subj.Label, Sessions: sessions})
	}
	return out, nil
}

func cloneSessions(in []Session) []Session {
	out := make([]Session, len(in))
	for i, s := range in {
		mods := make([]Modality, len(s.Modalities))
		for j, mod := range s.Modalities {
			files := make([]FileEntry, len(mod.Files))
			for k, f := range mod.Files {
				f.Metadata = Clone(f.Metadata)
				f.Entities = append([]Entity(nil), f.Entities...)
				files[k] = f
			}
			mods[j] = Modality{Name: mod.Name, Files: files}
		}
		out[i] = Session{Label: s.Label, Modalities: mods}
	}
	return out
}
