package archive

import "chatview/internal/attach"

// Stats represents aggregate counts over a loaded archive.
type Stats struct {
	Records     int
	Messages    int
	Skipped     int
	Servers     int
	Channels    int // distinct server/channel pairs
	Attachments int
	Images      int
	FirstDate   string
	LastDate    string
}

// ComputeStats summarizes msgs. records is the number of top-level entries
// the archive held before normalization.
func ComputeStats(records int, msgs []Message) Stats {
	st := Stats{Records: records, Messages: len(msgs)}
	if records > len(msgs) {
		st.Skipped = records - len(msgs)
	}
	servers := map[string]struct{}{}
	type pair struct{ server, channel string }
	channels := map[pair]struct{}{}
	for _, m := range msgs {
		servers[m.Server] = struct{}{}
		channels[pair{m.Server, m.Channel}] = struct{}{}
		st.Attachments += len(m.Attachments)
		for _, a := range m.Attachments {
			if attach.IsImageLike(a.Filename) {
				st.Images++
			}
		}
	}
	st.Servers = len(servers)
	st.Channels = len(channels)
	// msgs is sorted, so the ends carry the range
	if len(msgs) > 0 {
		st.FirstDate = msgs[0].Date
		st.LastDate = msgs[len(msgs)-1].Date
	}
	return st
}
