package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNoticeUnwrapsToValidation(t *testing.T) {
	for _, err := range []error{ErrMissingName, ErrMissingDate, ErrMissingText, ErrMissingPlaylist} {
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%v should wrap ErrValidation", err)
		}
		wrapped := fmt.Errorf("countdowns: add: %w", err)
		if got := Notice(wrapped); got != err.Error() {
			t.Errorf("Notice(%v) = %q", wrapped, got)
		}
	}
}

func TestNoticeNonValidation(t *testing.T) {
	if got := Notice(errors.New("disk full")); got != "" {
		t.Errorf("Notice(disk full) = %q, want empty", got)
	}
	if got := Notice(nil); got != "" {
		t.Errorf("Notice(nil) = %q, want empty", got)
	}
}
