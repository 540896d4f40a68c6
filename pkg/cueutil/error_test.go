// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "taskdeck.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v, want nil", err)
		}
	})

	t.Run("cue error keeps its path and cause", func(t *testing.T) {
		t.Parallel()

		v := cuecontext.New().CompileString(`panel: {default_size: 0 & >=1}`, cue.Filename("config.cue"))
		cause := v.Validate()
		if cause == nil {
			t.Fatal("Validate() = nil, want a bounds error")
		}

		err := FormatError(cause, "config.cue")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("FormatError() = %T, want *ValidationError", err)
		}
		var cueErr cueerrors.Error
		if !errors.As(err, &cueErr) || len(cueerrors.Errors(cueErr)) == 0 {
			t.Error("FormatError() dropped the CUE error from the chain")
		}
		if !strings.HasPrefix(err.Error(), "config.cue: ") || !strings.Contains(err.Error(), "panel.default_size") {
			t.Errorf("FormatError() = %q, want file and field path", err.Error())
		}
	})

	t.Run("plain error is prefixed and wrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom")
		err := FormatError(cause, "taskdeck.cue")
		if !errors.Is(err, cause) {
			t.Errorf("FormatError() should wrap the cause, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "taskdeck.cue: ") {
			t.Errorf("FormatError() = %q, want file prefix", err.Error())
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty", path: nil, want: ""},
		{name: "single field", path: []string{"tasks"}, want: "tasks"},
		{name: "nested fields", path: []string{"panel", "default_size"}, want: "panel.default_size"},
		{name: "list index", path: []string{"tasks", "0", "name"}, want: "tasks[0].name"},
		{name: "trailing index", path: []string{"tasks", "2", "command", "1"}, want: "tasks[2].command[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "a.cue"); err != nil {
		t.Errorf("at limit: unexpected error %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "a.cue")
	if err == nil {
		t.Fatal("over limit: expected error")
	}
	for _, want := range []string{"a.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err.Error(), want)
		}
	}
}
