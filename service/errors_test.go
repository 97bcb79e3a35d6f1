package service

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeConnection, "connection"},
		{ErrCodeWrite, "write"},
		{ErrCodeTimeout, "timeout"},
		{ErrCodeRead, "read"},
		{ErrCodeEncoding, "encoding"},
		{ErrCodeValidation, "validation"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := newError(ErrCodeConnection, errors.New("connection refused"))
	want := "httpservice: connection: connection refused"
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestError_Unwrap(t *testing.T) {
	e := newErrorf(ErrCodeRead, "parse response: %w", io.ErrUnexpectedEOF)
	if !errors.Is(e, io.ErrUnexpectedEOF) {
		t.Error("expected the cause to be reachable")
	}
	if e.Message != "parse response: unexpected EOF" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if plain := newErrorf(ErrCodeValidation, "method is required"); plain.Err != nil {
		t.Errorf("expected no cause, got %v", plain.Err)
	}
}

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("users-api: %w", newError(ErrCodeTimeout, errors.New("i/o timeout")))

	if code, ok := CodeOf(wrapped); !ok || code != ErrCodeTimeout {
		t.Errorf("expected timeout code through wrapping, got %v %v", code, ok)
	}
	if !IsTimeout(wrapped) || !IsRead(wrapped) {
		t.Error("expected a timeout to classify as a read failure")
	}
	if IsConnection(wrapped) || IsWrite(wrapped) || IsEncoding(wrapped) || IsValidation(wrapped) {
		t.Error("unexpected classification")
	}
	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Error("expected plain errors to carry no code")
	}
	if IsRead(nil) {
		t.Error("expected nil to carry no code")
	}
}
