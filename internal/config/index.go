package config

import (
	"sort"

	"github.com/enginewatch/enginewatch/internal/tcec"
)

// InterestIndex is the inverse of a WatchConfig: engine name to the
// sorted set of user IDs following it. Engines nobody follows are
// absent. Read-only after construction.
type InterestIndex struct {
	byEngine map[string][]string
}

// Match pairs one followed engine name with the users it implicates,
// produced when a live player name matches the watch list.
type Match struct {
	Engine string   `json:"engine"`
	Users  []string `json:"users"`
}

// Index builds the InterestIndex for this config.
//
// For every engine name appearing in any user's list, UsersFor returns
// exactly the set of users who listed it. Duplicate listings collapse;
// user sets come out sorted so downstream output is deterministic.
func (c *WatchConfig) Index() *InterestIndex {
	sets := make(map[string]map[string]struct{})
	for user, engines := range c.Users {
		for _, engine := range engines {
			if sets[engine] == nil {
				sets[engine] = make(map[string]struct{})
			}
			sets[engine][user] = struct{}{}
		}
	}

	byEngine := make(map[string][]string, len(sets))
	for engine, users := range sets {
		list := make([]string, 0, len(users))
		for u := range users {
			list = append(list, u)
		}
		sort.Strings(list)
		byEngine[engine] = list
	}

	return &InterestIndex{byEngine: byEngine}
}

// UsersFor returns the users following the engine name exactly as it
// appears in the watch config. Unknown engines return an empty set.
func (ix *InterestIndex) UsersFor(engine string) []string {
	return ix.byEngine[engine]
}

// Engines returns the indexed engine names, sorted.
func (ix *InterestIndex) Engines() []string {
	out := make([]string, 0, len(ix.byEngine))
	for e := range ix.byEngine {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// MatchPlayer matches a live player name against every followed engine
// using normalized name matching, so "Stockfish" in a watch list hits
// the feed's "Stockfish 17". Matches come back in engine-name order.
func (ix *InterestIndex) MatchPlayer(player tcec.Name) []Match {
	var matches []Match
	for _, engine := range ix.Engines() {
		if player.Matches(engine) {
			matches = append(matches, Match{Engine: engine, Users: ix.byEngine[engine]})
		}
	}
	return matches
}
