package callstate

import (
	"encoding/base64"
	"encoding/json"
)

// Encode serializes the state into a URL-safe token with no padding, suitable
// for a query parameter.
func Encode(s State) string {
	data, err := json.Marshal(s)
	if err != nil {
		// State contains only strings and ints; Marshal cannot fail here.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode reverses Encode. A corrupt or empty token returns nil; callers fall
// back to stage defaults rather than failing the call.
func Decode(token string) *State {
	if token == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}
