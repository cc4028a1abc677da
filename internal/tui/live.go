package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/velotype/internal/model"
)

// LiveFeed carries periodic stats from the session into the Bubble Tea loop.
type LiveFeed chan model.TestStats

// NewLiveFeed creates a feed that keeps only the latest pending snapshot.
func NewLiveFeed() LiveFeed {
	return make(LiveFeed, 1)
}

// Publish hands st to the UI without blocking; a stale pending snapshot is replaced.
func (f LiveFeed) Publish(st model.TestStats) {
	for {
		select {
		case f <- st:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

// Drain discards a pending snapshot left over from an earlier session.
func (f LiveFeed) Drain() {
	select {
	case <-f:
	default:
	}
}

type liveStatsMsg model.TestStats

func waitForLive(feed LiveFeed) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-feed
		if !ok {
			return nil
		}
		return liveStatsMsg(st)
	}
}
