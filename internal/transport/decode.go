package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

// flexString accepts a JSON string or number. Form inputs send durations and
// version numbers either way.
type flexString struct {
	set   bool
	value *string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	f.set = true
	if string(b) == "null" {
		f.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.value = &s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	v := n.String()
	f.value = &v
	return nil
}

// ptr returns nil when the field was absent or null.
func (f flexString) ptr() *string {
	return f.value
}

// patch returns nil when absent; a null clears the field.
func (f flexString) patch() *string {
	if !f.set {
		return nil
	}
	if f.value == nil {
		empty := ""
		return &empty
	}
	return f.value
}
