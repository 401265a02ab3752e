package acp

import "encoding/json"

// Meta is a free-form extension object carried by many payloads under the
// wire key "_meta". It is opaque: the core never interprets its contents,
// and it is present on output iff it was present on input (spec.md §3.3,
// §3.5 invariants).
type Meta map[string]json.RawMessage

// Role is the sender or recipient of a piece of content.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Annotations describes how a content block should be used or displayed.
type Annotations struct {
	Audience     []Role            `json:"audience,omitempty"`
	LastModified Optional[string]  `json:"-"`
	Priority     Optional[float64] `json:"-"`
	Meta         Meta              `json:"_meta,omitempty"`
}

type annotationsJSON struct {
	Audience     []Role          `json:"audience,omitempty"`
	LastModified json.RawMessage `json:"lastModified,omitempty"`
	Priority     json.RawMessage `json:"priority,omitempty"`
	Meta         Meta            `json:"_meta,omitempty"`
}

// MarshalJSON emits lastModified/priority only when the caller set them;
// both are ordinary optional fields here (not three-state), so "unset"
// simply means omitted.
func (a Annotations) MarshalJSON() ([]byte, error) {
	raw := annotationsJSON{Audience: a.Audience, Meta: a.Meta}
	if v, ok := a.LastModified.Get(); ok {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw.LastModified = b
	}
	if v, ok := a.Priority.Get(); ok {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw.Priority = b
	}
	return json.Marshal(raw)
}

func (a *Annotations) UnmarshalJSON(data []byte) error {
	var raw annotationsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Audience = raw.Audience
	a.Meta = raw.Meta
	if len(raw.LastModified) > 0 {
		var s string
		if err := json.Unmarshal(raw.LastModified, &s); err != nil {
			return err
		}
		a.LastModified = Some(s)
	} else {
		a.LastModified = Undefined[string]()
	}
	if len(raw.Priority) > 0 {
		var p float64
		if err := json.Unmarshal(raw.Priority, &p); err != nil {
			return err
		}
		a.Priority = Some(p)
	} else {
		a.Priority = Undefined[float64]()
	}
	return nil
}
