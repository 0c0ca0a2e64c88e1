package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

func TestTopic(t *testing.T) {
	cases := map[string]string{
		"Stressful day at WORK":  "Work",
		"Social battery":         "Relationships",
		"Anxiety spiral":         "Mental Health",
		"Weekly plan":            "Goals",
		"Morning routine":        "Daily Life",
		"Chat 3/1/2024":          "General",
		"work and anxiety notes": "Work",
	}
	for title, want := range cases {
		if got := Topic(title); got != want {
			t.Errorf("Topic(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestEmotion(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"emotion":"Calm"}`, "calm"},
		{`{"primaryEmotion":"anxious","score":0.8}`, "anxious"},
		{`{"score":0.8}`, ""},
		{`[1,2]`, ""},
		{``, ""},
	}
	for _, c := range cases {
		if got := Emotion(json.RawMessage(c.raw)); got != c.want {
			t.Errorf("Emotion(%s) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	for in, want := range map[string]Range{"": RangeMonth, "week": RangeWeek, "ALL": RangeAll} {
		got, err := ParseRange(in)
		if err != nil || got != want {
			t.Fatalf("ParseRange(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRange("year"); err == nil {
		t.Fatal("expected error for unknown range")
	}
	if RangeWeek.Days() != 7 || RangeMonth.Days() != 30 || RangeAll.Days() != 90 {
		t.Fatal("unexpected range lengths")
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	convs := []model.Conversation{
		{ID: "a", Title: "Work stress", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Title: "Morning routine", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "c", Title: "Chat", CreatedAt: now.AddDate(0, 0, -20)},
		{ID: "d", Title: "Old plan", CreatedAt: now.AddDate(0, 0, -60)},
	}
	msgs := map[string][]model.Message{
		"a": {
			{ID: "1", EmotionAnalysis: json.RawMessage(`{"emotion":"anxious"}`)},
			{ID: "2", EmotionAnalysis: json.RawMessage(`{"primaryEmotion":"Anxious"}`)},
			{ID: "3"},
		},
		"b": {
			{ID: "4", EmotionAnalysis: json.RawMessage(`{"emotion":"calm"}`)},
		},
		"c": {{ID: "5"}, {ID: "6"}},
	}

	rep := Compute(now, convs, msgs, RangeWeek)
	if rep.TotalConversations != 4 || rep.TotalMessages != 6 {
		t.Fatalf("totals = %d/%d", rep.TotalConversations, rep.TotalMessages)
	}
	if rep.AverageMessages != 2 { // 6/4 = 1.5 rounds to 2
		t.Fatalf("average = %d", rep.AverageMessages)
	}
	if rep.ConversationsThisWeek != 2 || rep.ConversationsThisMonth != 3 {
		t.Fatalf("week/month = %d/%d", rep.ConversationsThisWeek, rep.ConversationsThisMonth)
	}

	if len(rep.DailyActivity) != 7 {
		t.Fatalf("daily buckets = %d", len(rep.DailyActivity))
	}
	last := rep.DailyActivity[6]
	if !last.Date.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) || last.Count != 1 {
		t.Fatalf("today bucket = %+v", last)
	}
	if rep.DailyActivity[3].Count != 1 { // March 7
		t.Fatalf("three days ago bucket = %+v", rep.DailyActivity[3])
	}

	if rep.Emotions[0].Label != "anxious" || rep.Emotions[0].Count != 2 || rep.Emotions[1].Label != "calm" {
		t.Fatalf("emotions = %+v", rep.Emotions)
	}
	topics := map[string]int{}
	for _, tc := range rep.Topics {
		topics[tc.Label] = tc.Count
	}
	if topics["Work"] != 1 || topics["Daily Life"] != 1 || topics["General"] != 1 || topics["Goals"] != 1 {
		t.Fatalf("topics = %+v", rep.Topics)
	}

	all := Compute(now, convs, msgs, RangeAll)
	total := 0
	for _, d := range all.DailyActivity {
		total += d.Count
	}
	if len(all.DailyActivity) != 90 || total != 4 {
		t.Fatalf("all-range buckets = %d, counted %d", len(all.DailyActivity), total)
	}
}

func TestComputeEmpty(t *testing.T) {
	rep := Compute(time.Now(), nil, nil, "")
	if rep.Range != RangeMonth || rep.AverageMessages != 0 || len(rep.DailyActivity) != 30 {
		t.Fatalf("unexpected empty report %+v", rep)
	}
	if len(rep.Topics) != 0 || len(rep.Emotions) != 0 {
		t.Fatalf("expected no distributions, got %+v", rep)
	}
}
