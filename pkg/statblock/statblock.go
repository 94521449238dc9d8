package statblock

// Redacted is the placeholder substituted for values an unprivileged viewer
// is not allowed to see. Handlers may apply ruleset-specific redaction but
// this is the default policy.
const Redacted = "???"

// SectionType distinguishes sections that toggle as one unit from sections
// whose key pattern expands to many child keys.
type SectionType string

const (
	SectionSingle SectionType = "single"
	SectionGroup  SectionType = "group"
)

// SectionDefinition declares one top-level toggle group of a ruleset: its
// type, the key pattern its children follow, and the configuration key that
// controls its default visibility (empty when the section has no default
// setting).
type SectionDefinition struct {
	ID                string
	Type              SectionType
	KeyPattern        string
	DefaultSettingKey string
}

// Statblock is the standardized inspectable data structure: a
// ruleset-agnostic snapshot built fresh on every fetch. The visibility
// overlay is applied while building it and never merged back into actor
// data.
type Statblock struct {
	System   string
	ActorID  string
	Title    string
	Portrait string

	// TitleHidden is set for privileged viewers so the UI can mark the
	// redacted name; unprivileged viewers receive Redacted in Title and
	// never the real value.
	TitleHidden bool

	Sections []Section
}

// Section is one ordered block of the statblock. Defense-style sections
// carry Categories; everything else carries Rows.
type Section struct {
	ID     string
	Label  string
	Key    Key
	Hidden bool

	Rows       []Row
	Categories []Category
}

// Row is a single toggleable line (an ability score, a feature, an effect).
type Row struct {
	Key    Key
	Label  string
	Value  string
	Hidden bool
}

// Category groups tagged sub-items under a defense-category header.
type Category struct {
	ID     string
	Label  string
	Key    Key
	Hidden bool
	Tags   []Tag
}

// Tag is an individual defense trait instance.
type Tag struct {
	Key    Key
	Label  string
	Hidden bool
}

// Section returns the section with the given id, or nil.
func (s *Statblock) Section(id string) *Section {
	for i := range s.Sections {
		if s.Sections[i].ID == id {
			return &s.Sections[i]
		}
	}
	return nil
}

// Keys walks the snapshot and returns every element key it carries:
// section and header keys, row keys, category headers and their tags.
func (s *Statblock) Keys() []Key {
	var out []Key
	for _, sec := range s.Sections {
		if !sec.Key.IsZero() {
			out = append(out, sec.Key)
		}
		for _, r := range sec.Rows {
			if !r.Key.IsZero() {
				out = append(out, r.Key)
			}
		}
		for _, c := range sec.Categories {
			if !c.Key.IsZero() {
				out = append(out, c.Key)
			}
			for _, t := range c.Tags {
				out = append(out, t.Key)
			}
		}
	}
	return out
}
