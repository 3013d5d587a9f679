package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/kernels"
)

func runServer(t *testing.T, input string) []*Message {
	t.Helper()

	router, err := kernels.NewRouter()
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}
	b := builder.New(router, builder.WithOutputDir(t.TempDir()))

	var out bytes.Buffer
	srv := NewServer(strings.NewReader(input), &out, b, ServerConfig{
		Version: "test",
		Engines: []string{kernels.EngineSolid, kernels.EngineWorkplane, kernels.EngineMeshkit},
	}, nil)

	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var msgs []*Message
	dec := NewDecoder(&out)
	for {
		msg, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func command(t *testing.T, id string, ct CommandType, params interface{}) string {
	t.Helper()

	paramBytes, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	line, err := json.Marshal(map[string]interface{}{
		"type": MessageTypeCommand,
		"data": CommandMessage{
			ID:      id,
			Type:    ct,
			Timeout: 30,
			Params:  paramBytes,
		},
	})
	if err != nil {
		t.Fatalf("Failed to marshal command: %v", err)
	}
	return string(line) + "\n"
}

func lastOfType(msgs []*Message, mt MessageType) *Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == mt {
			return msgs[i]
		}
	}
	return nil
}

func TestServerHandshake(t *testing.T) {
	msgs := runServer(t, "")

	if len(msgs) != 2 {
		t.Fatalf("Expected READY and EXIT, got %d messages", len(msgs))
	}
	if msgs[0].Type != MessageTypeReady {
		t.Errorf("Expected first message READY, got %s", msgs[0].Type)
	}

	var ready ReadyMessage
	if err := json.Unmarshal(msgs[0].Data, &ready); err != nil {
		t.Fatalf("Failed to unmarshal ready: %v", err)
	}
	if len(ready.Engines) != 3 {
		t.Errorf("Expected 3 engines, got %v", ready.Engines)
	}
	if len(ready.Templates) == 0 {
		t.Error("Expected templates to be announced")
	}

	if msgs[1].Type != MessageTypeExit {
		t.Errorf("Expected last message EXIT, got %s", msgs[1].Type)
	}
	var exit ExitMessage
	if err := json.Unmarshal(msgs[1].Data, &exit); err != nil {
		t.Fatalf("Failed to unmarshal exit: %v", err)
	}
	if exit.Reason != "stdin_closed" {
		t.Errorf("Expected reason stdin_closed, got %s", exit.Reason)
	}
}

func TestServerBuildCommand(t *testing.T) {
	input := command(t, "b-1", CommandTypeBuild, BuildParams{
		Design:     json.RawMessage(`{"product_type":"box","length":100,"width":60,"height":40}`),
		BuildID:    "serve-build-1",
		SkipExport: true,
	})
	msgs := runServer(t, input)

	done := lastOfType(msgs, MessageTypeDone)
	if done == nil {
		t.Fatalf("Expected DONE message, got %v", msgs)
	}
	var dm DoneMessage
	if err := json.Unmarshal(done.Data, &dm); err != nil {
		t.Fatalf("Failed to unmarshal done: %v", err)
	}
	if dm.CommandID != "b-1" {
		t.Errorf("Expected command ID b-1, got %s", dm.CommandID)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(dm.Result, &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result["success"] != true {
		t.Errorf("Expected successful build, got %v", result)
	}
	if result["build_id"] != "serve-build-1" {
		t.Errorf("Expected build ID serve-build-1, got %v", result["build_id"])
	}

	if evt := lastOfType(msgs, MessageTypeEvent); evt == nil {
		t.Error("Expected a progress event before DONE")
	}
}

func TestServerValidateCommand(t *testing.T) {
	input := command(t, "v-1", CommandTypeValidate, ValidateParams{
		Design: json.RawMessage(`{"product_type":"box","length":10,"width":10,"height":10}`),
	})
	msgs := runServer(t, input)

	done := lastOfType(msgs, MessageTypeDone)
	if done == nil {
		t.Fatalf("Expected DONE message, got %v", msgs)
	}
	var dm DoneMessage
	if err := json.Unmarshal(done.Data, &dm); err != nil {
		t.Fatalf("Failed to unmarshal done: %v", err)
	}
	var vr ValidateResult
	if err := json.Unmarshal(dm.Result, &vr); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if !vr.Valid || vr.ProductType != "box" {
		t.Errorf("Unexpected validate result: %+v", vr)
	}
}

func TestServerValidateRejectsBadDocument(t *testing.T) {
	input := command(t, "v-2", CommandTypeValidate, ValidateParams{
		Design: json.RawMessage(`{"units":"mm"}`),
	})
	msgs := runServer(t, input)

	errMsg := lastOfType(msgs, MessageTypeError)
	if errMsg == nil {
		t.Fatalf("Expected ERROR message, got %v", msgs)
	}
	var em ErrorMessage
	if err := json.Unmarshal(errMsg.Data, &em); err != nil {
		t.Fatalf("Failed to unmarshal error: %v", err)
	}
	if em.CommandID != "v-2" {
		t.Errorf("Expected command ID v-2, got %s", em.CommandID)
	}
	if em.Code != "validation" {
		t.Errorf("Expected code validation, got %s", em.Code)
	}
	if !strings.Contains(em.Message, "product_type") {
		t.Errorf("Expected message to name the missing field, got %q", em.Message)
	}
}

func TestServerFrameCommand(t *testing.T) {
	input := command(t, "f-1", CommandTypeFrame, FrameParams{
		RiderHeight: 180,
		Units:       "cm",
		Material:    "carbon",
		BuildID:     "serve-frame-1",
		Formats:     []string{"stl"},
	})
	msgs := runServer(t, input)

	done := lastOfType(msgs, MessageTypeDone)
	if done == nil {
		t.Fatalf("Expected DONE message, got %v", msgs)
	}
	var dm DoneMessage
	if err := json.Unmarshal(done.Data, &dm); err != nil {
		t.Fatalf("Failed to unmarshal done: %v", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(dm.Result, &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result["product_type"] != "bicycle_frame" {
		t.Errorf("Expected bicycle_frame result, got %v", result)
	}
	files, ok := result["files"].([]interface{})
	if !ok || len(files) != 1 {
		t.Errorf("Expected 1 export file, got %v", result["files"])
	}
}

func TestServerTemplateCommand(t *testing.T) {
	input := command(t, "t-1", CommandTypeTemplate, TemplateParams{
		Template: "table",
		Params: map[string]interface{}{
			"length": 1200.0,
			"width":  700.0,
		},
		SkipExport: true,
	})
	msgs := runServer(t, input)

	done := lastOfType(msgs, MessageTypeDone)
	if done == nil {
		t.Fatalf("Expected DONE message, got %v", msgs)
	}
	var dm DoneMessage
	if err := json.Unmarshal(done.Data, &dm); err != nil {
		t.Fatalf("Failed to unmarshal done: %v", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(dm.Result, &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result["success"] != true {
		t.Errorf("Expected successful build, got %v", result)
	}
}

func TestServerUnknownTemplate(t *testing.T) {
	input := command(t, "t-2", CommandTypeTemplate, TemplateParams{
		Template: "gearbox",
	})
	msgs := runServer(t, input)

	errMsg := lastOfType(msgs, MessageTypeError)
	if errMsg == nil {
		t.Fatalf("Expected ERROR message, got %v", msgs)
	}
	var em ErrorMessage
	if err := json.Unmarshal(errMsg.Data, &em); err != nil {
		t.Fatalf("Failed to unmarshal error: %v", err)
	}
	if em.Code != "configuration" {
		t.Errorf("Expected code configuration, got %s", em.Code)
	}
}

func TestServerSurvivesMalformedLine(t *testing.T) {
	input := "not json\n" + command(t, "b-2", CommandTypeValidate, ValidateParams{
		Design: json.RawMessage(`{"product_type":"box","length":10,"width":10,"height":10}`),
	})
	msgs := runServer(t, input)

	if lastOfType(msgs, MessageTypeError) == nil {
		t.Error("Expected ERROR for malformed line")
	}
	if lastOfType(msgs, MessageTypeDone) == nil {
		t.Error("Expected later commands to still be served")
	}

	exit := lastOfType(msgs, MessageTypeExit)
	if exit == nil {
		t.Fatal("Expected EXIT message")
	}
	var em ExitMessage
	if err := json.Unmarshal(exit.Data, &em); err != nil {
		t.Fatalf("Failed to unmarshal exit: %v", err)
	}
	if em.CommandsTotal != 1 {
		t.Errorf("Expected 1 command counted, got %d", em.CommandsTotal)
	}
}

func TestServerCountsCommands(t *testing.T) {
	var input string
	for i := 0; i < 3; i++ {
		input += command(t, fmt.Sprintf("c-%d", i), CommandTypeValidate, ValidateParams{
			Design: json.RawMessage(`{"product_type":"box","length":10,"width":10,"height":10}`),
		})
	}
	msgs := runServer(t, input)

	exit := lastOfType(msgs, MessageTypeExit)
	if exit == nil {
		t.Fatal("Expected EXIT message")
	}
	var em ExitMessage
	if err := json.Unmarshal(exit.Data, &em); err != nil {
		t.Fatalf("Failed to unmarshal exit: %v", err)
	}
	if em.CommandsTotal != 3 {
		t.Errorf("Expected 3 commands counted, got %d", em.CommandsTotal)
	}
}
