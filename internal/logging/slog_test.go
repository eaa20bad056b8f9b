package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestAnonymizePhone(t *testing.T) {
	hash := AnonymizePhone("+919876543210")

	if !strings.HasPrefix(hash, "client:") {
		t.Errorf("hash = %q, want client: prefix", hash)
	}
	if strings.Contains(hash, "9876") {
		t.Errorf("hash %q leaks phone digits", hash)
	}
	if hash != AnonymizePhone("+919876543210") {
		t.Error("hashing is not deterministic")
	}
	if hash == AnonymizePhone("+919876543211") {
		t.Error("different phones must hash differently")
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("key = %q, want %q", attr.Key, KeyError)
	}
	if got := attr.Value.String(); got != "boom" {
		t.Errorf("value = %q, want boom", got)
	}

	// A nil error must not produce an error attribute.
	if got := Err(nil).Key; got != "" {
		t.Errorf("nil error attr key = %q, want empty", got)
	}
}
