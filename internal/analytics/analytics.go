// Package analytics summarises a user's journal: volume, recent activity,
// rough topics and the emotions recorded on messages.
package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

// Range selects how many days of daily activity a report covers.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

// ParseRange accepts week, month or all. Empty means month.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeMonth, nil
	case RangeWeek, RangeMonth, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("unknown range %q: want week, month or all", s)
}

// Days is the number of daily buckets the range spans.
func (r Range) Days() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeAll:
		return 90
	default:
		return 30
	}
}

type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report is the computed summary.
type Report struct {
	Range                  Range        `json:"range"`
	TotalConversations     int          `json:"totalConversations"`
	TotalMessages          int          `json:"totalMessages"`
	AverageMessages        int          `json:"averageMessagesPerConversation"`
	ConversationsThisWeek  int          `json:"conversationsThisWeek"`
	ConversationsThisMonth int          `json:"conversationsThisMonth"`
	DailyActivity          []DayCount   `json:"dailyActivity"`
	Topics                 []LabelCount `json:"topicDistribution"`
	Emotions               []LabelCount `json:"emotionDistribution"`
}

// topicRules are checked in order; the first match wins.
var topicRules = []struct {
	topic    string
	keywords []string
}{
	{"Work", []string{"work", "job"}},
	{"Relationships", []string{"relationship", "social"}},
	{"Mental Health", []string{"anxiety", "stress"}},
	{"Goals", []string{"goal", "plan"}},
	{"Daily Life", []string{"daily", "routine"}},
}

// Topic classifies a conversation title.
func Topic(title string) string {
	t := strings.ToLower(title)
	for _, r := range topicRules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.topic
			}
		}
	}
	return "General"
}

// Emotion extracts the emotion label from an emotion analysis payload, or ""
// when the payload carries none.
func Emotion(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var payload struct {
		Emotion        string `json:"emotion"`
		PrimaryEmotion string `json:"primaryEmotion"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	label := payload.Emotion
	if label == "" {
		label = payload.PrimaryEmotion
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// Compute builds a report as of now. messages maps conversation id to its log;
// conversations missing from the map count as empty.
func Compute(now time.Time, conversations []model.Conversation, messages map[string][]model.Message, r Range) Report {
	if r == "" {
		r = RangeMonth
	}
	rep := Report{Range: r, TotalConversations: len(conversations)}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	topics := map[string]int{}
	emotions := map[string]int{}
	for _, c := range conversations {
		if !c.CreatedAt.Before(weekAgo) {
			rep.ConversationsThisWeek++
		}
		if !c.CreatedAt.Before(monthAgo) {
			rep.ConversationsThisMonth++
		}
		topics[Topic(c.Title)]++
		for _, m := range messages[c.ID] {
			rep.TotalMessages++
			if e := Emotion(m.EmotionAnalysis); e != "" {
				emotions[e]++
			}
		}
	}
	if rep.TotalConversations > 0 {
		rep.AverageMessages = int(math.Round(float64(rep.TotalMessages) / float64(rep.TotalConversations)))
	}

	days := r.Days()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))
	rep.DailyActivity = make([]DayCount, days)
	for i := range rep.DailyActivity {
		rep.DailyActivity[i].Date = first.AddDate(0, 0, i)
	}
	for _, c := range conversations {
		day := startOfDay(c.CreatedAt.In(now.Location()))
		if day.Before(first) || day.After(today) {
			continue
		}
		// calendar days, so DST transitions do not skew the index
		idx := int(math.Round(day.Sub(first).Hours() / 24))
		if idx >= 0 && idx < days {
			rep.DailyActivity[idx].Count++
		}
	}

	rep.Topics = sortedCounts(topics)
	rep.Emotions = sortedCounts(emotions)
	return rep
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sortedCounts orders by count descending, then label.
func sortedCounts(m map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(m))
	for k, v := range m {
		out = append(out, LabelCount{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
