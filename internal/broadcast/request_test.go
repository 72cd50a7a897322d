package broadcast

import (
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
)

func TestDecodeRequest_raw_mapping(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"action":"create","cam_name":"Cam1","workflow_name":"RobotArm","privacy_status":"unlisted"}`))
	if err != nil {
		t.Fatal(err)
	}
	want := ActionRequest{Action: ActionCreate, CamName: "Cam1", WorkflowName: "RobotArm", PrivacyStatus: PrivacyUnlisted}
	if req != want {
		t.Errorf("got %+v, want %+v", req, want)
	}
}

func TestDecodeRequest_defaults(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"action":"end"}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.CamName != "UnknownCam" || req.WorkflowName != "UnknownWorkflow" || req.PrivacyStatus != PrivacyPrivate {
		t.Errorf("defaults not applied: %+v", req)
	}
}

func TestDecodeRequest_string_body(t *testing.T) {
	inner := `{"action":"end","workflow_name":"RobotArm"}`
	raw := `{"version":"2.0","rawPath":"/","body":` + strconv.Quote(inner) + `,"isBase64Encoded":false}`

	req, err := DecodeRequest([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if req.Action != ActionEnd || req.WorkflowName != "RobotArm" {
		t.Errorf("got %+v", req)
	}
}

func TestDecodeRequest_base64_body(t *testing.T) {
	inner := base64.StdEncoding.EncodeToString([]byte(`{"action":"create","workflow_name":"RobotArm"}`))
	raw := `{"body":"` + inner + `","isBase64Encoded":true}`

	req, err := DecodeRequest([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if req.Action != ActionCreate || req.WorkflowName != "RobotArm" {
		t.Errorf("got %+v", req)
	}
}

func TestDecodeRequest_object_body(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"body":{"action":"end","workflow_name":"RobotArm"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Action != ActionEnd || req.WorkflowName != "RobotArm" {
		t.Errorf("got %+v", req)
	}
}

func TestDecodeRequest_empty_body_falls_back_to_envelope(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"body":"","action":"end","workflow_name":"RobotArm"}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Action != ActionEnd || req.WorkflowName != "RobotArm" {
		t.Errorf("got %+v", req)
	}
}

func TestDecodeRequest_malformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`not json`,
		`[1,2,3]`,
		`{"action":`,
		`{"body":"{not json"}`,
		`{"body":"[]"}`,
		`{"body":"!!!","isBase64Encoded":true}`,
	} {
		if _, err := DecodeRequest([]byte(raw)); !errors.Is(err, ErrMalformedRequest) {
			t.Errorf("DecodeRequest(%q): expected ErrMalformedRequest, got %v", raw, err)
		}
	}
}

func TestDecodeRequest_non_string_fields(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"action":"create","cam_name":123,"workflow_name":true,"privacy_status":null}`))
	if err != nil {
		t.Fatal(err)
	}
	want := ActionRequest{Action: ActionCreate, CamName: "123", WorkflowName: "true", PrivacyStatus: PrivacyPrivate}
	if req != want {
		t.Errorf("got %+v, want %+v", req, want)
	}

	req, err = DecodeRequest([]byte(`{"action":5,"cam_name":{"id": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Action != "5" || req.Action.Valid() {
		t.Errorf("action = %q", req.Action)
	}
	if req.CamName != `{"id":1}` {
		t.Errorf("cam_name = %q", req.CamName)
	}
}
