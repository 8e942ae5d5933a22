package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	t.Run("below minimum level is discarded", func(t *testing.T) {
		buf.Reset()
		l := New(&buf, LevelError)
		n, err := l.print(LevelInfo, "quiet", nil)
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 || buf.Len() != 0 {
			t.Errorf("expected no output; got %q", buf.String())
		}
	})

	t.Run("INFO entry", func(t *testing.T) {
		buf.Reset()
		l := New(&buf, LevelInfo)
		l.PrintInfo("starting server", map[string]string{"addr": ":4000"})
		var entry struct {
			Level      string            `json:"level"`
			Message    string            `json:"message"`
			Properties map[string]string `json:"properties"`
			Trace      string            `json:"trace"`
		}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not valid JSON: %v", err)
		}
		if entry.Level != "INFO" {
			t.Errorf("expected level INFO; got %s", entry.Level)
		}
		if entry.Message != "starting server" {
			t.Errorf("unexpected message %q", entry.Message)
		}
		if entry.Properties["addr"] != ":4000" {
			t.Errorf("missing addr property in %v", entry.Properties)
		}
		if entry.Trace != "" {
			t.Error("INFO entries should not carry a stack trace")
		}
	})

	t.Run("ERROR entry includes trace", func(t *testing.T) {
		buf.Reset()
		l := New(&buf, LevelInfo)
		l.PrintError(errors.New("boom"), nil)
		var entry struct {
			Level string `json:"level"`
			Trace string `json:"trace"`
		}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not valid JSON: %v", err)
		}
		if entry.Level != "ERROR" {
			t.Errorf("expected level ERROR; got %s", entry.Level)
		}
		if entry.Trace == "" {
			t.Error("expected a stack trace for ERROR entries")
		}
	})

	t.Run("Write implements io.Writer at ERROR level", func(t *testing.T) {
		buf.Reset()
		l := New(&buf, LevelInfo)
		if _, err := l.Write([]byte("server error")); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"level":"ERROR"`) {
			t.Errorf("expected ERROR level line; got %q", buf.String())
		}
	})
}
