package engine

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "engine status",
			err:  NewError("pico_loadResource", -41, "resource not found"),
			want: "pico_loadResource failed (-41): resource not found",
		},
		{
			name: "wrapped cause",
			err:  Wrap("read", io.ErrUnexpectedEOF),
			want: "read failed: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := Wrap("start", ErrUnavailable)
	if !errors.Is(err, ErrUnavailable) {
		t.Error("Expected errors.Is to find wrapped cause")
	}

	var engErr *Error
	if !errors.As(error(err), &engErr) || engErr.Op != "start" {
		t.Error("Expected errors.As to recover *Error")
	}
}

func TestStatusString(t *testing.T) {
	if StatusBusy.String() != "busy" || StatusIdle.String() != "idle" {
		t.Error("Unexpected status names")
	}
	if !strings.HasPrefix(Status(9).String(), "status(") {
		t.Error("Unexpected name for unknown status")
	}
}
