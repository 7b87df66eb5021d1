package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"frontdesk-bot/internal/store"
)

// Window is the period the "recent" counters cover.
const Window = 24 * time.Hour

// Stats summarizes form submissions.
type Stats struct {
	Since          time.Time      `json:"since"`
	Total          int64          `json:"total"`
	Recent         int            `json:"recent"`
	UniqueUsers    int            `json:"unique_users"`
	RecentByButton map[string]int `json:"recent_by_button"`
}

// Analyze aggregates submissions created at or after since. Labels come from
// buttons; submissions whose button is gone are grouped by id.
func Analyze(subs []store.FormSubmission, buttons []store.MenuButton, total int64, since time.Time) *Stats {
	labels := make(map[uint]string, len(buttons))
	for _, b := range buttons {
		labels[b.ID] = b.Label
	}

	stats := &Stats{
		Since:          since.UTC(),
		Total:          total,
		RecentByButton: make(map[string]int),
	}
	users := make(map[int64]bool)
	for _, s := range subs {
		if s.CreatedAt.Before(since) {
			continue
		}
		stats.Recent++
		users[s.UserID] = true
		label, ok := labels[s.ButtonID]
		if !ok {
			label = fmt.Sprintf("#%d", s.ButtonID)
		}
		stats.RecentByButton[label]++
	}
	stats.UniqueUsers = len(users)
	return stats
}

// Collect reads everything Analyze needs in one unit of work.
func Collect(ctx context.Context, uow store.UnitOfWork, now time.Time) (*Stats, error) {
	since := now.Add(-Window)
	var stats *Stats
	err := uow.Do(ctx, func(tx store.Tx) error {
		total, err := tx.CountSubmissions()
		if err != nil {
			return err
		}
		subs, err := tx.SubmissionsSince(since)
		if err != nil {
			return err
		}
		buttons, err := tx.Buttons()
		if err != nil {
			return err
		}
		stats = Analyze(subs, buttons, total, since)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}

// Summary renders the stats for the admin panel and the daily report.
func (s *Stats) Summary() string {
	var b strings.Builder
	b.WriteString("📊 Статистика:\n")
	fmt.Fprintf(&b, "Всего заявок: %d\n", s.Total)
	fmt.Fprintf(&b, "За последние 24 часа: %d", s.Recent)
	if s.Recent == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, " (пользователей: %d)\n", s.UniqueUsers)

	labels := make([]string, 0, len(s.RecentByButton))
	for l := range s.RecentByButton {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		ci, cj := s.RecentByButton[labels[i]], s.RecentByButton[labels[j]]
		if ci != cj {
			return ci > cj
		}
		return labels[i] < labels[j]
	})
	for _, l := range labels {
		fmt.Fprintf(&b, "- %s: %d\n", l, s.RecentByButton[l])
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToJSON renders the stats as indented JSON.
func (s *Stats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
