package registration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString accepts a JSON string, number or boolean and keeps its text.
// Form clients send numeric fields either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", b[:1])
	default:
		*f = FlexString(b)
	}
	return nil
}

func (f FlexString) String() string { return strings.TrimSpace(string(f)) }

// FlexBool is true for true, non-zero numbers and strings other than "",
// "0", "false" and "no".
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	var fs FlexString
	if err := fs.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(fs.String()) {
	case "", "0", "false", "no", "off":
		*f = false
	default:
		*f = true
	}
	return nil
}
