package crm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the common CRM response wrapper: {success, message, data}.
// success is optional; several read endpoints omit it.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseEnvelope(op string, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if env.Success != nil && !*env.Success {
		return nil, &RejectedError{Message: env.Message}
	}
	return &env, nil
}

func (e *envelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// decodeData decodes the data member of an envelope into T. A missing or null
// data member is a decode error.
func decodeData[T any](op string, body []byte) (T, error) {
	var out T
	env, err := parseEnvelope(op, body)
	if err != nil {
		return out, err
	}
	if !env.hasData() {
		return out, &DecodeError{Op: op, Err: fmt.Errorf("response has no data")}
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &DecodeError{Op: op, Err: err}
	}
	return out, nil
}

// decodeAck checks a write acknowledgement and returns its message.
// The CRM must state success explicitly for writes.
func decodeAck(op string, body []byte) (string, error) {
	env, err := parseEnvelope(op, body)
	if err != nil {
		return "", err
	}
	if env.Success == nil {
		return "", &DecodeError{Op: op, Err: fmt.Errorf("response has no success flag")}
	}
	return env.Message, nil
}

// decodeList accepts either a bare JSON array or an envelope whose data is an array.
// The rule endpoints answer with both shapes depending on the deployment.
func decodeList[T any](op string, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, &DecodeError{Op: op, Err: err}
		}
		return out, nil
	}
	out, err := decodeData[[]T](op, body)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeWrite checks the answer of a CRUD write. Unlike decodeAck it tolerates an
// empty body or a missing success flag, but success=false is still a rejection.
// When the answer carries data it is decoded into out.
func decodeWrite(op string, body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	env, err := parseEnvelope(op, body)
	if err != nil {
		return err
	}
	if out == nil || !env.hasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}
