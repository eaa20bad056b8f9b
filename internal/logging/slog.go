package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyTool         = "tool"
	KeyConversation = "conversation"
	KeyClientHash   = "client_hash"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// New returns a JSON slog logger writing to stderr. Debug mode lowers the
// level and adds source positions.
func New(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Conversation returns a slog attribute for the conversation identifier.
func Conversation(id string) slog.Attr {
	return slog.String(KeyConversation, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error. A nil error yields an empty
// group that slog omits, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizePhone returns a hashed representation of a phone number for
// logging. Allows correlating entries without exposing the number itself.
func AnonymizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(phone))
	return "client:" + hex.EncodeToString(hash[:8])
}

// ClientHash returns a slog attribute with the anonymized client phone.
func ClientHash(phone string) slog.Attr {
	return slog.String(KeyClientHash, AnonymizePhone(phone))
}
