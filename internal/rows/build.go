package rows

import (
	"strings"

	"chatview/internal/archive"
)

// state is the grouping context carried from one message to the next.
type state struct {
	dateKey string
	server  string
	channel string
	hasDate bool
	hasHead bool
}

// Build groups date-sorted messages into rows using DefaultFormatter.
func Build(msgs []archive.Message) ([]Row, error) {
	return BuildWith(msgs, DefaultFormatter{})
}

// BuildWith groups date-sorted messages into rows. A new day always emits a
// DateRow followed by a fresh HeaderRow, even for an unchanged channel. A
// timestamp the formatter rejects aborts the whole build.
func BuildWith(msgs []archive.Message, f Formatter) ([]Row, error) {
	out := make([]Row, 0, len(msgs)+len(msgs)/4+2)
	var st state
	for _, m := range msgs {
		var err error
		st, out, err = step(st, out, m, f)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func step(st state, out []Row, m archive.Message, f Formatter) (state, []Row, error) {
	dateKey, clock, err := f.Format(m.Date)
	if err != nil {
		return st, out, &archive.FormatError{Msg: "cannot group message", Err: err}
	}

	if !st.hasDate || st.dateKey != dateKey {
		out = append(out, DateRow{Date: dateKey})
		st = state{dateKey: dateKey, hasDate: true}
	}

	if !st.hasHead || st.server != m.Server || st.channel != m.Channel {
		out = append(out, HeaderRow{Server: m.Server, Channel: m.Channel, Category: m.Category})
		st.server, st.channel, st.hasHead = m.Server, m.Channel, true
	}

	content := strings.TrimSpace(m.Content)
	if content == "" && len(m.Attachments) == 0 {
		return st, out, nil
	}
	if content == "" {
		content = AttachmentPlaceholder
	}
	out = append(out, MessageRow{Time: clock, Content: content, Attachments: m.Attachments})
	return st, out, nil
}
