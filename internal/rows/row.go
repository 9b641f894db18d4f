package rows

import "chatview/internal/archive"

// AttachmentPlaceholder stands in for the text of a message that only
// carries attachments.
const AttachmentPlaceholder = "[attachment]"

type Kind int

const (
	KindDate Kind = iota
	KindHeader
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindHeader:
		return "header"
	case KindMessage:
		return "msg"
	}
	return "unknown"
}

// Row is one display unit: a DateRow, a HeaderRow or a MessageRow.
type Row interface {
	Kind() Kind
	isRow()
}

// DateRow marks the start of a day.
type DateRow struct {
	Date string
}

// HeaderRow marks the start of a server/channel group within a day.
type HeaderRow struct {
	Server   string
	Channel  string
	Category string
}

// MessageRow is one visible message. Attachments aliases the originating
// message's slice and must not be modified.
type MessageRow struct {
	Time        string
	Content     string
	Attachments []archive.Attachment
}

func (DateRow) Kind() Kind    { return KindDate }
func (HeaderRow) Kind() Kind  { return KindHeader }
func (MessageRow) Kind() Kind { return KindMessage }

func (DateRow) isRow()    {}
func (HeaderRow) isRow()  {}
func (MessageRow) isRow() {}

// Label is the section text shown for a header.
func (h HeaderRow) Label() string { return h.Server + " / " + h.Channel }
