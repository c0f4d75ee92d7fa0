package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "code and message",
			err:      New(CodeOutputNotFound, "output not found: /tmp/j_output_0.mp4"),
			contains: []string{"OUTPUT_NOT_FOUND", "/tmp/j_output_0.mp4"},
		},
		{
			name: "op prefix and cause",
			err: &Error{
				Code:    CodeProcessExecution,
				Message: "ffmpeg command failed",
				Op:      "compose.execute",
				Err:     fmt.Errorf("Invalid argument"),
			},
			contains: []string{"compose.execute: ", "[PROCESS_EXECUTION_ERROR]", "Invalid argument"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			str := tt.err.Error()
			for _, c := range tt.contains {
				if !strings.Contains(str, c) {
					t.Errorf("expected error string to contain %q, got: %s", c, str)
				}
			}
		})
	}
}

func TestWrapPreservesCodeAndCause(t *testing.T) {
	inner := OutputNotFound("/tmp/x.mp4")
	wrapped := Wrap(inner, "processor.compose", "compose job failed")

	if wrapped.Code != CodeOutputNotFound {
		t.Errorf("expected code to be preserved, got %s", wrapped.Code)
	}
	if errors.Unwrap(wrapped) != inner {
		t.Error("Unwrap should return the inner error")
	}
	if wrapped.Fields["path"] != "/tmp/x.mp4" {
		t.Errorf("expected fields to carry over, got %v", wrapped.Fields)
	}

	plain := Wrap(fmt.Errorf("boom"), "op", "msg")
	if plain.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR for a plain error, got %s", plain.Code)
	}

	if Wrap(nil, "op", "msg") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if WrapWithCode(nil, CodeUpload, "op", "msg") != nil {
		t.Error("WrapWithCode(nil) should return nil")
	}
}

func TestPipelineCodesMapToServerFailure(t *testing.T) {
	codes := []Code{CodeDownload, CodeProcessExecution, CodeOutputNotFound, CodeUpload}
	for _, c := range codes {
		if got := New(c, "x").HTTPStatus(); got != 500 {
			t.Errorf("%s: expected 500, got %d", c, got)
		}
	}
	if got := Validation("bad").HTTPStatus(); got != 400 {
		t.Errorf("validation: expected 400, got %d", got)
	}
	if got := NotFound("job", "j1").HTTPStatus(); got != 404 {
		t.Errorf("not found: expected 404, got %d", got)
	}
}

func TestDownload(t *testing.T) {
	cause := fmt.Errorf("http 404")
	err := Download("https://example.com/a.mp4", cause)

	if !IsCode(err, CodeDownload) {
		t.Errorf("expected DOWNLOAD_ERROR, got %s", GetCode(err))
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if GetFields(err)["source"] != "https://example.com/a.mp4" {
		t.Errorf("unexpected fields: %v", GetFields(err))
	}
}

func TestGetCodeThroughStdlibWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeUpload, "put failed"))
	if GetCode(err) != CodeUpload {
		t.Errorf("expected UPLOAD_ERROR, got %s", GetCode(err))
	}
	if GetCode(fmt.Errorf("plain")) != CodeInternal {
		t.Error("expected INTERNAL_ERROR for plain errors")
	}
	if GetHTTPStatus(fmt.Errorf("plain")) != 500 {
		t.Error("expected 500 for plain errors")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeOutputNotFound, "a")
	b := New(CodeOutputNotFound, "b")
	c := New(CodeUpload, "c")

	if !errors.Is(a, b) {
		t.Error("expected errors with same code to match")
	}
	if errors.Is(a, c) {
		t.Error("expected errors with different codes not to match")
	}
	if !IsValidation(ValidationField("inputs", "at least one input is required")) {
		t.Error("expected IsValidation")
	}
	if !IsNotFound(NotFound("job", "j")) {
		t.Error("expected IsNotFound")
	}
}

func TestStackTrace(t *testing.T) {
	err := New(CodeInternal, "test error")
	if !strings.Contains(err.StackTrace(), ".go:") {
		t.Errorf("expected file references in stack trace, got: %s", err.StackTrace())
	}
	if (&Error{}).StackTrace() != "" {
		t.Error("expected empty stack trace without frames")
	}
}
