package notify

import (
	"fmt"
	"sort"
	"strings"
)

// Content is everything a game notification says.
type Content struct {
	Tournament string
	White      string
	Black      string
	// Mentions are messaging user IDs to ping, deduplicated by the
	// caller or not; formatting dedups and sorts either way.
	Mentions []string
	// SiteURL is the link target for the tournament name.
	SiteURL string
}

// Message renders the notification text:
//
//	[`tournament`](url) `white` vs. `black`   cc. <@!id> <@!id>
//
// The cc. block is omitted when nobody is mentioned.
func Message(c Content) string {
	mentions := ""
	if len(c.Mentions) > 0 {
		ids := dedupSorted(c.Mentions)
		tags := make([]string, len(ids))
		for i, id := range ids {
			tags[i] = fmt.Sprintf("<@!%s>", id)
		}
		mentions = "   cc. " + strings.Join(tags, " ")
	}

	return fmt.Sprintf("[`%s`](%s) `%s` vs. `%s`%s",
		c.Tournament, c.SiteURL, c.White, c.Black, mentions)
}

func dedupSorted(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
