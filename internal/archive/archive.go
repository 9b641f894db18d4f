package archive

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
)

const (
	DefaultServer   = "unknown"
	DefaultChannel  = "unknown"
	DefaultFilename = "file"
)

type Attachment struct {
	Filename string
	URL      string
}

type Message struct {
	Server      string
	Category    string
	Channel     string
	Date        string // ISO-8601, also the sort key
	Content     string
	Attachments []Attachment
}

// FormatError reports input that cannot be turned into rows at all.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err, or anything it wraps, is a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

var errTopLevel = &FormatError{Msg: "top-level structure must be a list of objects"}

// Load reads and normalizes the archive at path.
func Load(path string) ([]Message, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON archive from r and normalizes it.
func Decode(r io.Reader) ([]Message, error) {
	msgs, _, err := decode(r)
	return msgs, err
}

func decode(r io.Reader) ([]Message, int, error) {
	var data any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, 0, &FormatError{Msg: "invalid JSON", Err: err}
	}
	records := 0
	if arr, ok := data.([]any); ok {
		records = len(arr)
	}
	msgs, err := Normalize(data)
	return msgs, records, err
}

// Normalize converts decoded JSON into messages sorted by date.
// Records that are not objects or have no date are dropped without error.
func Normalize(data any) ([]Message, error) {
	arr, ok := data.([]any)
	if !ok {
		return nil, errTopLevel
	}
	out := make([]Message, 0, len(arr))
	for _, item := range arr {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		date, _ := rec["date"].(string)
		if date == "" {
			continue
		}
		out = append(out, Message{
			Server:      stringField(rec, "server", DefaultServer),
			Category:    stringField(rec, "category", ""),
			Channel:     stringField(rec, "channel", DefaultChannel),
			Date:        date,
			Content:     stringField(rec, "content", ""),
			Attachments: parseAttachments(rec["attachments"]),
		})
	}
	SortByDate(out)
	return out, nil
}

// SortByDate orders messages by their raw date string. ISO timestamps sort
// lexicographically; equal dates keep input order.
func SortByDate(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Date < msgs[j].Date })
}

func stringField(rec map[string]any, key, def string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return def
}

func parseAttachments(v any) []Attachment {
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	var out []Attachment
	for _, a := range raw {
		m, ok := a.(map[string]any)
		if !ok {
			continue
		}
		fn := strings.TrimSpace(stringField(m, "filename", ""))
		url := strings.TrimSpace(stringField(m, "url", ""))
		if fn == "" && url == "" {
			continue
		}
		if fn == "" {
			fn = DefaultFilename
		}
		out = append(out, Attachment{Filename: fn, URL: url})
	}
	return out
}
