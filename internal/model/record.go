package model

import (
	"bytes"
	"encoding/json"
)

// Group names an attribute bucket of a normalized record.
type Group string

const (
	GroupGeneral   Group = "general"
	GroupFinancial Group = "financial"
	GroupPeople    Group = "people"
	GroupConnect   Group = "connect"
)

// Groups returns the attribute groups in display order.
func Groups() []Group {
	return []Group{GroupGeneral, GroupFinancial, GroupPeople, GroupConnect}
}

// IsKnownGroup reports whether g is one of the fixed attribute groups.
func IsKnownGroup(g Group) bool {
	for _, known := range Groups() {
		if g == known {
			return true
		}
	}
	return false
}

// Segment is one piece of a field value split around embedded URLs.
// Exactly one of Text or URL is set.
type Segment struct {
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
	Label string `json:"label,omitempty"`
}

// IsLink reports whether the segment is a URL.
func (s Segment) IsLink() bool { return s.URL != "" }

// Field is a single named value inside a group.
type Field struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Segments []Segment `json:"segments,omitempty"`
}

// GroupFields holds the fields of one attribute group in column order.
type GroupFields struct {
	Name   Group   `json:"name"`
	Fields []Field `json:"fields"`
}

// Record is a company record normalized into attribute groups.
// Groups with no fields are never present.
type Record struct {
	Source Source        `json:"source"`
	Name   string        `json:"name"`
	Groups []GroupFields `json:"groups"`
}

// Group returns the fields of g, or nil when the record has none.
func (r *Record) Group(g Group) []Field {
	for _, gf := range r.Groups {
		if gf.Name == g {
			return gf.Fields
		}
	}
	return nil
}

// Field returns the named field of group g.
func (r *Record) Field(g Group, name string) (Field, bool) {
	for _, f := range r.Group(g) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the value of a field, or "" when absent.
func (r *Record) Value(g Group, name string) string {
	f, _ := r.Field(g, name)
	return f.Value
}

// GroupMap returns the group as a plain field → value map.
func (r *Record) GroupMap(g Group) map[string]string {
	fields := r.Group(g)
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

// MarshalJSON renders groups as ordered objects:
//
//	{"source":"gait","name":"Acme","groups":{"general":{"Industry":"Robotics"}},
//	 "links":{"people":{"Founders":[{"text":"Jane, "},{"url":"https://...","label":"LinkedIn"}]}}}
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"source":`)
	if err := writeJSON(&buf, r.Source); err != nil {
		return nil, err
	}
	buf.WriteString(`,"name":`)
	if err := writeJSON(&buf, r.Name); err != nil {
		return nil, err
	}

	buf.WriteString(`,"groups":{`)
	for i, gf := range r.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, gf.Name); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, f := range gf.Fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(&buf, f.Name); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSON(&buf, f.Value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var linked []GroupFields
	for _, gf := range r.Groups {
		var withLinks []Field
		for _, f := range gf.Fields {
			if len(f.Segments) > 0 {
				withLinks = append(withLinks, f)
			}
		}
		if len(withLinks) > 0 {
			linked = append(linked, GroupFields{Name: gf.Name, Fields: withLinks})
		}
	}
	if len(linked) > 0 {
		buf.WriteString(`,"links":{`)
		for i, gf := range linked {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(&buf, gf.Name); err != nil {
				return nil, err
			}
			buf.WriteString(":{")
			for j, f := range gf.Fields {
				if j > 0 {
					buf.WriteByte(',')
				}
				if err := writeJSON(&buf, f.Name); err != nil {
					return nil, err
				}
				buf.WriteByte(':')
				if err := writeJSON(&buf, f.Segments); err != nil {
					return nil, err
				}
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
