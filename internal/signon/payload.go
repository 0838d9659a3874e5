package signon

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is the body of a custom sign-on request: a typed core plus the
// passthrough fields the caller sent alongside it.
type Payload struct {
	Empno  string // subject id for V5_MD5
	TTime  string // unix seconds, as sent
	Token  string // keyed hash
	UserID string
	Name   string
	Role   string
	Email  string

	Extra map[string]any
}

var coreFields = []string{"empno", "t_time", "token", "userId", "name", "role", "email"}

func (p *Payload) field(name string) *string {
	switch name {
	case "empno":
		return &p.Empno
	case "t_time":
		return &p.TTime
	case "token":
		return &p.Token
	case "userId":
		return &p.UserID
	case "name":
		return &p.Name
	case "role":
		return &p.Role
	case "email":
		return &p.Email
	}
	return nil
}

// UnmarshalJSON accepts core fields as strings or numbers; clients send
// t_time and empno either way.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Payload{}
	for _, name := range coreFields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		delete(raw, name)
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("signon: field %q: %w", name, err)
		}
		*p.field(name) = s
	}
	if len(raw) == 0 {
		return nil
	}
	p.Extra = make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return err
		}
		p.Extra[k] = decoded
	}
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(coreFields))
	for k, v := range p.Extra {
		out[k] = v
	}
	for _, name := range coreFields {
		if s := *p.field(name); s != "" {
			out[name] = s
		}
	}
	return json.Marshal(out)
}

func scalarString(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	if string(v) == "null" {
		return "", nil
	}
	return "", fmt.Errorf("expected a string or number")
}
