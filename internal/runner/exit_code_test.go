// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"testing"
)

func TestExitCodeIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "cargo error is valid", value: 101, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			isValid, errs := tt.value.IsValid()
			if isValid != tt.wantValid {
				t.Errorf("ExitCode(%d).IsValid() = %v, want %v", tt.value, isValid, tt.wantValid)
			}
			if !tt.wantValid && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidExitCode)) {
				t.Errorf("ExitCode(%d).IsValid() errors = %v, want ErrInvalidExitCode", tt.value, errs)
			}
		})
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  int
		want ExitCode
	}{
		{0, 0},
		{101, 101},
		{-1, 1},
		{300, 1},
	}
	for _, tt := range tests {
		if got := exitCodeOf(tt.raw); got != tt.want {
			t.Errorf("exitCodeOf(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
	if !ExitCode(0).IsSuccess() || ExitCode(101).IsSuccess() {
		t.Error("IsSuccess() mismatch")
	}
	if ExitCode(101).String() != "101" {
		t.Errorf("String() = %q", ExitCode(101).String())
	}
}
