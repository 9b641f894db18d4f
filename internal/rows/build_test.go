package rows

import (
	"errors"
	"strings"
	"testing"

	"chatview/internal/archive"
)

func kinds(rs []Row) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.Kind().String()
	}
	return strings.Join(parts, ",")
}

func TestBuildGroupsByDayAndChannel(t *testing.T) {
	msgs := []archive.Message{
		{Server: "S", Channel: "general", Date: "2024-01-01T10:00:00Z", Content: "hello"},
		{Server: "S", Channel: "general", Date: "2024-01-01T10:05:00Z", Content: "world"},
		{Server: "S", Channel: "random", Date: "2024-01-01T11:00:00Z", Content: "x"},
		{Server: "S", Channel: "random", Date: "2024-01-02T09:00:00Z", Content: "next day"},
	}
	rs, err := Build(msgs)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := kinds(rs), "date,header,msg,msg,header,msg,date,header,msg"; got != want {
		t.Fatalf("kinds = %s, want %s", got, want)
	}
	if d := rs[0].(DateRow); d.Date != "1/1/24" {
		t.Fatalf("date = %q", d.Date)
	}
	if h := rs[1].(HeaderRow); h.Label() != "S / general" {
		t.Fatalf("label = %q", h.Label())
	}
	if m := rs[2].(MessageRow); m.Time != "10:00 AM" || m.Content != "hello" {
		t.Fatalf("msg = %+v", m)
	}
	// a new day repeats the header even though the channel did not change
	if h := rs[7].(HeaderRow); h.Channel != "random" {
		t.Fatalf("header after new date = %+v", h)
	}
}

func TestBuildEveryMessageHasContext(t *testing.T) {
	msgs := []archive.Message{
		{Server: "A", Channel: "1", Date: "2024-03-01T00:00:00Z", Content: "a"},
		{Server: "B", Channel: "1", Date: "2024-03-01T01:00:00Z", Content: "b"},
		{Server: "B", Channel: "2", Date: "2024-03-01T02:00:00Z", Content: "c"},
		{Server: "B", Channel: "2", Date: "2024-03-04T02:00:00Z", Content: "d"},
		{Server: "A", Channel: "1", Date: "2024-03-04T03:00:00Z", Content: "e"},
	}
	rs, err := Build(msgs)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rs[0].(DateRow); !ok {
		t.Fatalf("first row is %s", rs[0].Kind())
	}
	seenDate, seenHeader := false, false
	for i, r := range rs {
		switch r.(type) {
		case DateRow:
			seenDate, seenHeader = true, false
			if i+1 >= len(rs) || rs[i+1].Kind() != KindHeader {
				t.Fatalf("date row %d not followed by header", i)
			}
		case HeaderRow:
			if !seenDate {
				t.Fatalf("header %d before any date", i)
			}
			seenHeader = true
		case MessageRow:
			if !seenDate || !seenHeader {
				t.Fatalf("message %d without context", i)
			}
		}
	}
}

func TestBuildEmptyAndAttachmentOnly(t *testing.T) {
	atts := []archive.Attachment{{Filename: "a.png", URL: "https://x/a.png"}}
	msgs := []archive.Message{
		{Server: "S", Channel: "C", Date: "2024-01-01T10:00:00Z", Content: "   "},
		{Server: "S", Channel: "C", Date: "2024-01-01T10:01:00Z", Content: "", Attachments: atts},
		{Server: "S", Channel: "C", Date: "2024-01-01T10:02:00Z", Content: "  padded  "},
	}
	rs, err := Build(msgs)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := kinds(rs), "date,header,msg,msg"; got != want {
		t.Fatalf("kinds = %s, want %s", got, want)
	}
	m := rs[2].(MessageRow)
	if m.Content != AttachmentPlaceholder || len(m.Attachments) != 1 {
		t.Fatalf("attachment-only row = %+v", m)
	}
	if &m.Attachments[0] != &atts[0] {
		t.Fatalf("attachments were copied")
	}
	if c := rs[3].(MessageRow).Content; c != "padded" {
		t.Fatalf("content not trimmed: %q", c)
	}
}

func TestBuildEmptyDayStillHasHeaders(t *testing.T) {
	msgs := []archive.Message{{Server: "S", Channel: "C", Date: "2024-01-01T10:00:00Z"}}
	rs, err := Build(msgs)
	if err != nil {
		t.Fatal(err)
	}
	if got := kinds(rs); got != "date,header" {
		t.Fatalf("kinds = %s", got)
	}
}

func TestBuildBadTimestamp(t *testing.T) {
	msgs := []archive.Message{
		{Server: "S", Channel: "C", Date: "2024-01-01T10:00:00Z", Content: "ok"},
		{Server: "S", Channel: "C", Date: "yesterday", Content: "bad"},
	}
	rs, err := Build(msgs)
	if err == nil {
		t.Fatalf("expected error, got rows %v", rs)
	}
	var fe *archive.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %T", err)
	}
	if rs != nil {
		t.Fatalf("expected no rows on error")
	}
}

func TestBuildNoMessages(t *testing.T) {
	rs, err := Build(nil)
	if err != nil || len(rs) != 0 {
		t.Fatalf("rs=%v err=%v", rs, err)
	}
}

type fixedFormatter struct{}

func (fixedFormatter) Format(ts string) (string, string, error) {
	return ts[:1], "t", nil
}

func TestBuildWithCustomFormatter(t *testing.T) {
	msgs := []archive.Message{
		{Server: "S", Channel: "C", Date: "a1", Content: "x"},
		{Server: "S", Channel: "C", Date: "a2", Content: "y"},
		{Server: "S", Channel: "C", Date: "b1", Content: "z"},
	}
	rs, err := BuildWith(msgs, fixedFormatter{})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := kinds(rs), "date,header,msg,msg,date,header,msg"; got != want {
		t.Fatalf("kinds = %s, want %s", got, want)
	}
}
