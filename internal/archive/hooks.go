package archive

import (
	"github.com/dop251/goja"
	"github.com/rs/zerolog"

	"chatview/internal/hooks"
)

// LoadWithHooks loads the archive at path and runs the extendMessage hook
// over every retained message when env defines it.
func LoadWithHooks(path string, env *hooks.HookEnv, log zerolog.Logger) ([]Message, Stats, error) {
	f, err := Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	msgs, records, err := decode(f)
	if err != nil {
		return nil, Stats{}, err
	}
	if env != nil && env.Has("extendMessage") {
		before := len(msgs)
		msgs = ApplyHooks(msgs, env)
		log.Debug().Str("component", "hooks").Int("before", before).Int("after", len(msgs)).Msg("extendMessage applied")
	}
	st := ComputeStats(records, msgs)
	log.Debug().
		Int("records", st.Records).
		Int("messages", st.Messages).
		Int("skipped", st.Skipped).
		Int("channels", st.Channels).
		Int("attachments", st.Attachments).
		Msg("archive loaded")
	return msgs, st, nil
}

// ApplyHooks passes each message through extendMessage. A returned object
// overrides fields, null or false drops the message, anything else keeps it.
func ApplyHooks(msgs []Message, env *hooks.HookEnv) []Message {
	out := msgs[:0:0]
	for _, m := range msgs {
		arg := messageToMap(m)
		rv, ok := env.Call("extendMessage", arg)
		if !ok {
			out = append(out, m)
			continue
		}
		if goja.IsUndefined(rv) {
			// no return value: the hook may have edited its argument in place
			if nm, keep := mapToMessage(arg, m); keep {
				out = append(out, nm)
			}
			continue
		}
		switch v := rv.Export().(type) {
		case nil:
			continue
		case bool:
			if v {
				out = append(out, m)
			}
		case map[string]any:
			if nm, keep := mapToMessage(v, m); keep {
				out = append(out, nm)
			}
		default:
			out = append(out, m)
		}
	}
	SortByDate(out)
	return out
}

func messageToMap(m Message) map[string]any {
	atts := make([]any, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		atts = append(atts, map[string]any{"filename": a.Filename, "url": a.URL})
	}
	return map[string]any{
		"server":      m.Server,
		"category":    m.Category,
		"channel":     m.Channel,
		"date":        m.Date,
		"content":     m.Content,
		"attachments": atts,
	}
}

func mapToMessage(mm map[string]any, base Message) (Message, bool) {
	m := base
	if v, ok := mm["server"].(string); ok && v != "" {
		m.Server = v
	}
	if v, ok := mm["category"].(string); ok {
		m.Category = v
	}
	if v, ok := mm["channel"].(string); ok && v != "" {
		m.Channel = v
	}
	if v, ok := mm["content"].(string); ok {
		m.Content = v
	}
	if v, ok := mm["date"].(string); ok {
		// a hook blanking the date removes the message like the loader would
		if v == "" {
			return m, false
		}
		m.Date = v
	}
	if v, ok := mm["attachments"]; ok {
		m.Attachments = parseAttachments(v)
	}
	return m, true
}
