// Package analytics turns detection history into crop health statistics.
package analytics

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	monthsInWindow   = 6
	weeksInWindow    = 4
	topDiseaseLimit  = 5
	recentWindowSize = 10
	trendThreshold   = 10.0
)

// Record is one detection as reported by the history endpoint. DetectedAt is kept
// as text so malformed timestamps can be counted but left out of the histograms.
type Record struct {
	ID              string `json:"id,omitempty"`
	DetectedDisease string `json:"detected_disease"`
	DetectedAt      string `json:"detected_at"`
}

type MonthlyTrend struct {
	Key              string `json:"key"`
	Month            string `json:"month"`
	Healthy          int    `json:"healthy"`
	Diseased         int    `json:"diseased"`
	Total            int    `json:"total"`
	HealthPercentage int    `json:"health_percentage"`
}

type WeeklyHealth struct {
	Week       string    `json:"week"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Percentage int       `json:"percentage"`
	Total      int       `json:"total"`
	Healthy    int       `json:"healthy"`
	Diseased   int       `json:"diseased"`
}

type DiseaseCount struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Summary is the aggregate view of a detection history.
type Summary struct {
	TotalDetections    int            `json:"total_detections"`
	HealthyCount       int            `json:"healthy_count"`
	DiseasedCount      int            `json:"diseased_count"`
	HealthyPercentage  int            `json:"healthy_percentage"`
	DiseasedPercentage int            `json:"diseased_percentage"`
	MonthlyTrends      []MonthlyTrend `json:"monthly_trends"`
	WeeklyHealth       []WeeklyHealth `json:"weekly_health"`
	CommonDiseases     []DiseaseCount `json:"common_diseases"`
	HealthTrend        string         `json:"health_trend"`
	Insights           []string       `json:"insights"`
}

// EmptySummary is the result for a history with no usable records.
func EmptySummary() Summary {
	return Summary{
		MonthlyTrends:  []MonthlyTrend{},
		WeeklyHealth:   []WeeklyHealth{},
		CommonDiseases: []DiseaseCount{},
		HealthTrend:    TrendStable,
		Insights:       []string{},
	}
}

type entry struct {
	healthy     bool
	displayName string
	at          time.Time
	parsed      bool
}

var (
	capitalLetter = regexp.MustCompile(`([A-Z])`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// DisplayName turns a classifier label such as "Tomato_EarlyBlight" into "Tomato Early Blight".
func DisplayName(label string) string {
	name := capitalLetter.ReplaceAllString(label, " $1")
	name = strings.ReplaceAll(name, "_", " ")
	return whitespace.ReplaceAllString(strings.TrimSpace(name), " ")
}

// IsHealthy reports whether a label describes a healthy plant.
func IsHealthy(label string) bool {
	return strings.Contains(strings.ToLower(label), "healthy")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders t for a Record. The zero time becomes "", which
// Summarize treats as a missing timestamp.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts RFC 3339 and the common variants emitted by SQL backends.
// Timestamps without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Summarize aggregates records relative to now. Monthly buckets use UTC calendar
// months; weekly buckets are Sunday-start weeks in now's location.
func Summarize(records []Record, now time.Time, log *zap.Logger) Summary {
	if log == nil {
		log = zap.NewNop()
	}

	valid := make([]entry, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.DetectedDisease) == "" || strings.TrimSpace(r.DetectedAt) == "" {
			log.Warn("Skipping detection record without label or timestamp", zap.String("id", r.ID))
			continue
		}
		d := entry{
			healthy:     IsHealthy(r.DetectedDisease),
			displayName: DisplayName(r.DetectedDisease),
		}
		if at, err := ParseTimestamp(r.DetectedAt); err == nil {
			d.at, d.parsed = at, true
		} else {
			log.Warn("Detection timestamp unparseable, excluded from histograms",
				zap.String("id", r.ID), zap.String("detected_at", r.DetectedAt))
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return EmptySummary()
	}

	total := len(valid)
	healthy := 0
	for _, d := range valid {
		if d.healthy {
			healthy++
		}
	}
	diseased := total - healthy

	s := Summary{
		TotalDetections:    total,
		HealthyCount:       healthy,
		DiseasedCount:      diseased,
		HealthyPercentage:  percent(healthy, total),
		DiseasedPercentage: percent(diseased, total),
		MonthlyTrends:      monthlyTrends(valid, now),
		WeeklyHealth:       weeklyHealth(valid, now),
		CommonDiseases:     commonDiseases(valid, diseased),
		HealthTrend:        healthTrend(valid, healthy, total),
	}
	s.Insights = insights(s)
	return s
}

func monthlyTrends(valid []entry, now time.Time) []MonthlyTrend {
	current := now.UTC()
	first := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, time.UTC)

	trends := make([]MonthlyTrend, monthsInWindow)
	index := make(map[string]int, monthsInWindow)
	for i := 0; i < monthsInWindow; i++ {
		month := first.AddDate(0, i-(monthsInWindow-1), 0)
		key := month.Format("2006-01")
		trends[i] = MonthlyTrend{Key: key, Month: month.Format("Jan 2006")}
		index[key] = i
	}

	for _, d := range valid {
		if !d.parsed {
			continue
		}
		i, ok := index[d.at.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		trends[i].Total++
		if d.healthy {
			trends[i].Healthy++
		} else {
			trends[i].Diseased++
		}
	}
	for i := range trends {
		trends[i].HealthPercentage = percent(trends[i].Healthy, trends[i].Total)
	}
	return trends
}

func weeklyHealth(valid []entry, now time.Time) []WeeklyHealth {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	currentWeekStart := today.AddDate(0, 0, -int(now.Weekday()))

	weeks := make([]WeeklyHealth, 0, weeksInWindow)
	for i := weeksInWindow - 1; i >= 0; i-- {
		start := currentWeekStart.AddDate(0, 0, -7*i)
		end := time.Date(start.Year(), start.Month(), start.Day()+6, 23, 59, 59, int(999*time.Millisecond), loc)

		w := WeeklyHealth{Week: fmt.Sprintf("Week %d", weeksInWindow-i), Start: start, End: end}
		for _, d := range valid {
			if !d.parsed || d.at.Before(start) || d.at.After(end) {
				continue
			}
			w.Total++
			if d.healthy {
				w.Healthy++
			}
		}
		w.Diseased = w.Total - w.Healthy
		w.Percentage = percent(w.Healthy, w.Total)
		weeks = append(weeks, w)
	}
	return weeks
}

// DiseaseGroup collapses related disease names into one bucket.
func DiseaseGroup(displayName string) string {
	lower := strings.ToLower(displayName)
	switch {
	case strings.Contains(lower, "leaf spot") || strings.Contains(lower, "septoria"):
		return "Leaf Spot Diseases"
	case strings.Contains(lower, "blight"):
		return "Blight Diseases"
	case strings.Contains(lower, "bacterial") && strings.Contains(lower, "soft rot"):
		return "Bacterial Soft Rot"
	default:
		return displayName
	}
}

func commonDiseases(valid []entry, diseased int) []DiseaseCount {
	counts := make(map[string]int)
	var order []string
	for _, d := range valid {
		if d.healthy || d.displayName == "" {
			continue
		}
		name := DiseaseGroup(d.displayName)
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topDiseaseLimit {
		order = order[:topDiseaseLimit]
	}

	out := make([]DiseaseCount, 0, len(order))
	for _, name := range order {
		out = append(out, DiseaseCount{Name: name, Count: counts[name], Percentage: percent(counts[name], diseased)})
	}
	return out
}

func healthTrend(valid []entry, healthy, total int) string {
	recent := valid
	if len(recent) > recentWindowSize {
		recent = recent[len(recent)-recentWindowSize:]
	}
	recentHealthy := 0
	for _, d := range recent {
		if d.healthy {
			recentHealthy++
		}
	}
	recentPct := float64(recentHealthy*100) / float64(len(recent))
	overallPct := float64(healthy*100) / float64(total)

	switch {
	case recentPct > overallPct+trendThreshold:
		return TrendImproving
	case recentPct < overallPct-trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func insights(s Summary) []string {
	out := []string{}
	switch s.HealthTrend {
	case TrendImproving:
		out = append(out, "Great news! Your crop health is improving over time.")
	case TrendDeclining:
		out = append(out, "Attention needed: Recent detections show declining health trends.")
	}
	if len(s.CommonDiseases) > 0 {
		top := s.CommonDiseases[0]
		out = append(out, fmt.Sprintf("Most common issue: %s (%d cases)", top.Name, top.Count))
	}
	if s.TotalDetections > 0 {
		out = append(out, fmt.Sprintf("You've performed %d health checks this period.", s.TotalDetections))
	}
	if n := len(s.WeeklyHealth); n > 0 && s.WeeklyHealth[n-1].Total > 0 {
		week := s.WeeklyHealth[n-1]
		out = append(out, fmt.Sprintf("This week: %d checks with %d%% healthy rate.", week.Total, week.Percentage))
	}
	return out
}
