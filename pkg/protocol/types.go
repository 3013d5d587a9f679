// Package protocol defines the JSON-line protocol spoken by
// `forge serve`: newline-delimited messages over stdin/stdout so an
// external tool can drive builds without re-launching the binary.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType represents the type of message in the protocol.
type MessageType string

const (
	// MessageTypeReady indicates the server is ready to receive commands
	MessageTypeReady MessageType = "READY"
	// MessageTypeCommand indicates a command from the client
	MessageTypeCommand MessageType = "CMD"
	// MessageTypeEvent indicates a progress event from the server
	MessageTypeEvent MessageType = "EVENT"
	// MessageTypeDone indicates successful completion
	MessageTypeDone MessageType = "DONE"
	// MessageTypeError indicates an error occurred
	MessageTypeError MessageType = "ERROR"
	// MessageTypeExit indicates the server is exiting
	MessageTypeExit MessageType = "EXIT"
)

// CommandType represents the type of command to execute.
type CommandType string

const (
	// CommandTypeBuild runs a design document through the pipeline
	CommandTypeBuild CommandType = "build"
	// CommandTypeValidate validates a design document without building
	CommandTypeValidate CommandType = "validate"
	// CommandTypeFrame generates a bicycle frame
	CommandTypeFrame CommandType = "frame"
	// CommandTypeTemplate expands a template and builds the result
	CommandTypeTemplate CommandType = "template"
)

// Message is the base message structure for all protocol messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ReadyMessage is sent when the server is ready to receive commands.
type ReadyMessage struct {
	Version   string            `json:"version"`
	Platform  string            `json:"platform"`
	Arch      string            `json:"arch"`
	PID       int               `json:"pid"`
	Engines   []string          `json:"engines"`
	Templates []string          `json:"templates"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CommandMessage contains a command to execute.
type CommandMessage struct {
	ID       string            `json:"id"`
	Type     CommandType       `json:"type"`
	Timeout  int               `json:"timeout"` // seconds
	Params   json.RawMessage   `json:"params"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EventMessage contains progress information during command execution.
type EventMessage struct {
	CommandID string            `json:"command_id"`
	Level     string            `json:"level"` // info, warn, debug
	Message   string            `json:"message"`
	Progress  *ProgressInfo     `json:"progress,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ProgressInfo contains progress tracking information.
type ProgressInfo struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Unit    string `json:"unit"`
}

// DoneMessage indicates successful command completion.
type DoneMessage struct {
	CommandID string            `json:"command_id"`
	Result    json.RawMessage   `json:"result"`
	Duration  float64           `json:"duration"` // seconds
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ErrorMessage indicates an error occurred. Code carries the error
// class (validation, precondition, configuration, unsupported, kernel)
// so clients can react without parsing the message text.
type ErrorMessage struct {
	CommandID string            `json:"command_id,omitempty"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

// ExitMessage is sent before the server terminates.
type ExitMessage struct {
	Reason        string `json:"reason"`
	ExitCode      int    `json:"exit_code"`
	CommandsTotal int    `json:"commands_total"`
}

// Command parameter structures for each command type

// BuildParams contains parameters for a pipeline build.
type BuildParams struct {
	// Design is the raw design document, passed through the same
	// decode and validation path as `forge build`.
	Design     json.RawMessage `json:"design"`
	BuildID    string          `json:"build_id,omitempty"`
	Formats    []string        `json:"formats,omitempty"`
	SkipExport bool            `json:"skip_export,omitempty"`
}

// ValidateParams contains parameters for design validation.
type ValidateParams struct {
	Design json.RawMessage `json:"design"`
}

// ValidateResult contains the result of design validation.
type ValidateResult struct {
	Valid       bool   `json:"valid"`
	ProductType string `json:"product_type"`
	Operations  int    `json:"operations"`
}

// FrameParams contains parameters for bicycle frame generation.
type FrameParams struct {
	RiderHeight float64  `json:"rider_height"`
	Units       string   `json:"units,omitempty"`
	Material    string   `json:"material,omitempty"`
	BuildID     string   `json:"build_id,omitempty"`
	Formats     []string `json:"formats,omitempty"`
}

// TemplateParams contains parameters for template expansion.
type TemplateParams struct {
	Template   string                 `json:"template"`
	Params     map[string]interface{} `json:"params,omitempty"`
	BuildID    string                 `json:"build_id,omitempty"`
	Formats    []string               `json:"formats,omitempty"`
	SkipExport bool                   `json:"skip_export,omitempty"`
}

// Validation methods

// Validate checks if the message type is valid.
func (mt MessageType) Validate() error {
	switch mt {
	case MessageTypeReady, MessageTypeCommand, MessageTypeEvent,
		MessageTypeDone, MessageTypeError, MessageTypeExit:
		return nil
	default:
		return fmt.Errorf("invalid message type: %s", mt)
	}
}

// Validate checks if the command type is valid.
func (ct CommandType) Validate() error {
	switch ct {
	case CommandTypeBuild, CommandTypeValidate, CommandTypeFrame,
		CommandTypeTemplate:
		return nil
	default:
		return fmt.Errorf("invalid command type: %s", ct)
	}
}

// Validate checks if the command message is valid.
func (cmd *CommandMessage) Validate() error {
	if cmd.ID == "" {
		return fmt.Errorf("command ID is required")
	}
	if err := cmd.Type.Validate(); err != nil {
		return err
	}
	if cmd.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if len(cmd.Params) == 0 {
		return fmt.Errorf("command params are required")
	}
	return nil
}

// Validate checks if the event message is valid.
func (evt *EventMessage) Validate() error {
	if evt.CommandID == "" {
		return fmt.Errorf("command ID is required")
	}
	if evt.Level == "" {
		evt.Level = "info"
	}
	validLevels := map[string]bool{"info": true, "warn": true, "debug": true}
	if !validLevels[evt.Level] {
		return fmt.Errorf("invalid event level: %s", evt.Level)
	}
	return nil
}
