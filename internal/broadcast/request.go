package broadcast

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DecodeRequest extracts the ActionRequest from an inbound payload. The
// payload is either the request object itself or a trigger envelope (API
// Gateway, Lambda function URL) carrying it under "body", as a JSON string
// (optionally base64 encoded) or as a nested object. An empty string body
// falls back to the envelope itself. Missing fields get their defaults.
func DecodeRequest(raw []byte) (ActionRequest, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ActionRequest{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	payload, err := unwrapBody(envelope, raw)
	if err != nil {
		return ActionRequest{}, err
	}

	var w wireRequest
	if err := json.Unmarshal(payload, &w); err != nil {
		return ActionRequest{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	req := ActionRequest{
		Action:        Action(w.Action),
		CamName:       string(w.CamName),
		WorkflowName:  string(w.WorkflowName),
		PrivacyStatus: PrivacyStatus(w.PrivacyStatus),
	}
	req.applyDefaults()
	return req, nil
}

// wireRequest accepts any JSON value for each field.
type wireRequest struct {
	Action        looseString `json:"action"`
	CamName       looseString `json:"cam_name"`
	WorkflowName  looseString `json:"workflow_name"`
	PrivacyStatus looseString `json:"privacy_status"`
}

// looseString takes a JSON string as is, null as empty, and any other value
// as its compact JSON text, so {"cam_name":123} names the camera "123".
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = looseString(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*l = looseString(buf.String())
	return nil
}

func unwrapBody(envelope map[string]json.RawMessage, raw []byte) ([]byte, error) {
	body, ok := envelope["body"]
	if !ok || string(body) == "null" {
		return raw, nil
	}

	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		// Not a string: the body is already a JSON value.
		return body, nil
	}
	if s == "" {
		return raw, nil
	}

	var encoded bool
	if v, ok := envelope["isBase64Encoded"]; ok {
		_ = json.Unmarshal(v, &encoded)
	}
	if !encoded {
		return []byte(s), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrMalformedRequest, err)
	}
	return decoded, nil
}
