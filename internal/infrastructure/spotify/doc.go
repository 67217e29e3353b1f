// Package spotify adapts the Spotify Web API (client-credentials auth, track
// search and audio features) to the catalog and feature resolver contracts.
package spotify
