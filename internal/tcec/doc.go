// Package tcec reads the TCEC live game feed.
//
// TCEC publishes the in-progress game as a single PGN document at a
// stable URL, updated as moves are played. The package parses that
// document into a Game, classifies which moves came from the opening
// book (TCEC annotates book moves with a comment starting "book,"), and
// matches the participating engine names against names users follow.
//
// Engine names on the feed carry version decorations ("Stockfish 17",
// "Colossus 2025b") that users don't write in their watch lists, so all
// matching goes through a normalized form: lowercased, version and date
// suffixes stripped, NFC normalized. See Name.
//
// Two sources are provided: Client polls the PGN URL over HTTP, and
// LiveFeed subscribes to the site's socket.io event stream for a push
// variant of the same data.
package tcec
