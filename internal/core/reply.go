package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedReply = errors.New("malformed reply")
	ErrRejected       = errors.New("rejected by backend")
)

// Reply is the outcome of a save or delete call.
type Reply struct {
	Success bool
	Message string
}

// ParseReply interprets a mutation response body. Empty bodies and plain text
// count as success; JSON must explicitly report success.
func ParseReply(body []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Reply{Success: true}, nil
	}

	switch trimmed[0] {
	case '{', '[', '"':
	default:
		return Reply{Success: true, Message: string(trimmed)}, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return Reply{Success: true, Message: s}, nil
	}

	if trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return Reply{}, ErrMalformedReply
		}
		return Reply{}, fmt.Errorf("%w: unexpected array reply", ErrRejected)
	}

	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if env.Success == nil || !*env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "no success flag"
		}
		return Reply{Message: env.Message}, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return Reply{Success: true, Message: env.Message}, nil
}
