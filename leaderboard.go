/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

type LeaderboardEntry struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

// Leaderboard lists every player in join order, host first. Players who have
// not answered the last question show zero regardless of partial progress.
func Leaderboard(room *Room) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(room.Players))

	for _, p := range room.Players {
		entry := LeaderboardEntry{Name: p.Name}
		if p.Finished {
			entry.Score = p.Score
			entry.Finished = true
		}
		entries = append(entries, entry)
	}

	return entries
}
