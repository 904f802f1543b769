package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Wednesday.
var now = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func rec(label, at string) Record {
	return Record{DetectedDisease: label, DetectedAt: at}
}

func labels(n int, label string, at string) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = rec(label, at)
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	for _, input := range [][]Record{nil, {}, {rec("", "2026-03-01T10:00:00Z"), rec("Tomato_healthy", "")}} {
		s := Summarize(input, now, nil)
		assert.Zero(t, s.TotalDetections)
		assert.Zero(t, s.HealthyPercentage)
		assert.Equal(t, TrendStable, s.HealthTrend)
		assert.NotNil(t, s.MonthlyTrends)
		assert.Empty(t, s.MonthlyTrends)
		assert.NotNil(t, s.WeeklyHealth)
		assert.NotNil(t, s.CommonDiseases)
		assert.NotNil(t, s.Insights)
	}
}

func TestSummarize_HealthyAndBlight(t *testing.T) {
	s := Summarize([]Record{
		rec("Healthy", "2026-03-02T09:00:00Z"),
		rec("Tomato Blight", "2026-03-03T09:00:00Z"),
	}, now, zap.NewNop())

	assert.Equal(t, 2, s.TotalDetections)
	assert.Equal(t, 1, s.HealthyCount)
	assert.Equal(t, 1, s.DiseasedCount)
	assert.Equal(t, 50, s.HealthyPercentage)
	assert.Equal(t, 50, s.DiseasedPercentage)
	require.Len(t, s.CommonDiseases, 1)
	assert.Equal(t, DiseaseCount{Name: "Blight Diseases", Count: 1, Percentage: 100}, s.CommonDiseases[0])

	march := s.MonthlyTrends[len(s.MonthlyTrends)-1]
	assert.Equal(t, "2026-03", march.Key)
	assert.Equal(t, "Mar 2026", march.Month)
	assert.Equal(t, 2, march.Total)
	assert.Equal(t, 50, march.HealthPercentage)
}

func TestSummarize_CountsAlwaysAddUp(t *testing.T) {
	inputs := [][]Record{
		labels(7, "Corn_healthy", "2026-01-05T00:00:00Z"),
		append(labels(3, "Potato_Late_blight", "2025-06-01T00:00:00Z"), labels(4, "Potato_healthy", "garbage")...),
		{rec("HEALTHY", "2026-03-01T00:00:00Z"), rec("Rust", "2026-03-01T00:00:00Z"), rec("x", "bad")},
	}
	for i, input := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			s := Summarize(input, now, nil)
			assert.Equal(t, s.TotalDetections, s.HealthyCount+s.DiseasedCount)
		})
	}
}

func TestSummarize_MonthlyWindow(t *testing.T) {
	s := Summarize([]Record{
		rec("Tomato_healthy", "2025-09-30T23:00:00Z"),
		rec("Tomato_healthy", "2025-10-01T00:00:00Z"),
		rec("Tomato_Early_blight", "2025-12-15T08:30:00+05:45"),
		rec("Tomato_Early_blight", "2026-03-31T10:00:00Z"),
		rec("Tomato_Early_blight", "2026-04-01T00:00:00Z"),
	}, now, nil)

	assert.Equal(t, 5, s.TotalDetections)
	require.Len(t, s.MonthlyTrends, 6)
	keys := make([]string, 0, 6)
	for _, m := range s.MonthlyTrends {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"}, keys)
	assert.Equal(t, "Oct 2025", s.MonthlyTrends[0].Month)
	assert.Equal(t, 1, s.MonthlyTrends[0].Total)
	assert.Equal(t, 100, s.MonthlyTrends[0].HealthPercentage)
	assert.Equal(t, 1, s.MonthlyTrends[2].Diseased)
	assert.Equal(t, 0, s.MonthlyTrends[3].Total)
	assert.Equal(t, 0, s.MonthlyTrends[3].HealthPercentage)
	assert.Equal(t, 1, s.MonthlyTrends[5].Total)
}

func TestSummarize_WeeklyWindow(t *testing.T) {
	s := Summarize([]Record{
		rec("Tomato_healthy", "2026-03-15T00:00:00Z"),
		rec("Tomato_Early_blight", "2026-03-21T23:59:59.999Z"),
		rec("Tomato_Early_blight", "2026-03-22T00:00:00Z"),
		rec("Tomato_healthy", "2026-03-08T10:00:00Z"),
		rec("Tomato_healthy", "2026-02-21T23:00:00Z"),
	}, now, nil)

	require.Len(t, s.WeeklyHealth, 4)
	assert.Equal(t, "Week 1", s.WeeklyHealth[0].Week)
	assert.Equal(t, time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC), s.WeeklyHealth[0].Start)
	assert.Equal(t, 0, s.WeeklyHealth[0].Total)

	week3 := s.WeeklyHealth[2]
	assert.Equal(t, 1, week3.Total)
	assert.Equal(t, 100, week3.Percentage)

	week4 := s.WeeklyHealth[3]
	assert.Equal(t, "Week 4", week4.Week)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), week4.Start)
	assert.Equal(t, time.Date(2026, 3, 21, 23, 59, 59, int(999*time.Millisecond), time.UTC), week4.End)
	assert.Equal(t, 2, week4.Total)
	assert.Equal(t, 1, week4.Healthy)
	assert.Equal(t, 1, week4.Diseased)
	assert.Equal(t, 50, week4.Percentage)
	assert.Contains(t, s.Insights, "This week: 2 checks with 50% healthy rate.")
}

func TestSummarize_WeeksFollowLocalTime(t *testing.T) {
	npt := time.FixedZone("NPT", 5*3600+45*60)
	// Sunday 01:45 in Nepal, still Saturday in UTC.
	localNow := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC).In(npt)

	s := Summarize([]Record{rec("Tomato_healthy", "2026-03-14T19:00:00Z")}, localNow, nil)
	week4 := s.WeeklyHealth[3]
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, npt), week4.Start)
	assert.Equal(t, 1, week4.Total)
	assert.Equal(t, "2026-03", s.MonthlyTrends[5].Key)
}

func TestSummarize_UnparseableTimestamp(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := Summarize([]Record{
		{ID: "1", DetectedDisease: "Tomato_healthy", DetectedAt: "yesterday"},
		{ID: "2", DetectedDisease: "Tomato_Early_blight", DetectedAt: "2026-03-16T08:00:00Z"},
		{ID: "3", DetectedDisease: "", DetectedAt: "2026-03-16T08:00:00Z"},
	}, now, zap.New(core))

	assert.Equal(t, 2, s.TotalDetections)
	assert.Equal(t, 1, s.HealthyCount)
	monthTotal := 0
	for _, m := range s.MonthlyTrends {
		monthTotal += m.Total
	}
	assert.Equal(t, 1, monthTotal)
	assert.Equal(t, 1, s.WeeklyHealth[3].Total)
	assert.Equal(t, 2, logs.Len())
}

func TestSummarize_TopDiseases(t *testing.T) {
	var input []Record
	for _, l := range []string{"Rust", "Scab", "Scab", "Mildew", "Mosaic", "Scab", "Mosaic", "Wilt", "Curl"} {
		input = append(input, rec(l, "2026-03-10T00:00:00Z"))
	}
	s := Summarize(input, now, nil)

	require.Len(t, s.CommonDiseases, 5)
	assert.Equal(t, DiseaseCount{Name: "Scab", Count: 3, Percentage: 33}, s.CommonDiseases[0])
	assert.Equal(t, DiseaseCount{Name: "Mosaic", Count: 2, Percentage: 22}, s.CommonDiseases[1])
	assert.Equal(t, "Rust", s.CommonDiseases[2].Name)
	assert.Equal(t, "Mildew", s.CommonDiseases[3].Name)
	assert.Equal(t, "Wilt", s.CommonDiseases[4].Name)
	assert.Equal(t, 11, s.CommonDiseases[2].Percentage)
	assert.Contains(t, s.Insights, "Most common issue: Scab (3 cases)")
}

func TestDiseaseGroupingAndDisplay(t *testing.T) {
	tests := []struct {
		label   string
		display string
		group   string
	}{
		{"Tomato_Septoria_leaf_spot", "Tomato Septoria leaf spot", "Leaf Spot Diseases"},
		{"Pepper__bell___Bacterial_spot", "Pepper bell Bacterial spot", "Pepper bell Bacterial spot"},
		{"Potato___Late_blight", "Potato Late blight", "Blight Diseases"},
		{"Tomato_EarlyBlight", "Tomato Early Blight", "Blight Diseases"},
		{"Cabbage_Bacterial_Soft_Rot", "Cabbage Bacterial Soft Rot", "Bacterial Soft Rot"},
		{"Cauliflower_Bacterial_rot", "Cauliflower Bacterial rot", "Cauliflower Bacterial rot"},
		{"Corn_Leaf Spot", "Corn Leaf Spot", "Leaf Spot Diseases"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.display, DisplayName(tt.label))
			assert.Equal(t, tt.group, DiseaseGroup(DisplayName(tt.label)))
		})
	}
	assert.True(t, IsHealthy("Tomato___HEALTHY"))
	assert.False(t, IsHealthy("Tomato_Early_blight"))
}

func TestSummarize_Trend(t *testing.T) {
	at := "2026-03-10T00:00:00Z"
	improving := append(labels(10, "Rust", at), labels(10, "Tomato_healthy", at)...)
	declining := append(labels(10, "Tomato_healthy", at), labels(10, "Rust", at)...)

	s := Summarize(improving, now, nil)
	assert.Equal(t, TrendImproving, s.HealthTrend)
	assert.Equal(t, "Great news! Your crop health is improving over time.", s.Insights[0])

	s = Summarize(declining, now, nil)
	assert.Equal(t, TrendDeclining, s.HealthTrend)
	assert.Equal(t, "Attention needed: Recent detections show declining health trends.", s.Insights[0])

	// Recent 60% against overall 50% sits exactly on the threshold.
	boundary := append(labels(4, "Tomato_healthy", at), labels(6, "Rust", at)...)
	boundary = append(boundary, labels(6, "Tomato_healthy", at)...)
	boundary = append(boundary, labels(4, "Rust", at)...)
	s = Summarize(boundary, now, nil)
	assert.Equal(t, TrendStable, s.HealthTrend)

	s = Summarize(labels(3, "Rust", at), now, nil)
	assert.Equal(t, TrendStable, s.HealthTrend)
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2026-03-10T08:15:00Z",
		"2026-03-10T14:00:00.123456+05:45",
		"2026-03-10T08:15:00",
		"2026-03-10 08:15:00",
	} {
		_, err := ParseTimestamp(raw)
		assert.NoError(t, err, raw)
	}
	_, err := ParseTimestamp("10/03/2026")
	assert.Error(t, err)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "", FormatTimestamp(time.Time{}))
	at := time.Date(2026, 3, 18, 17, 45, 0, 0, time.FixedZone("NPT", 5*3600+45*60))
	assert.Equal(t, "2026-03-18T12:00:00Z", FormatTimestamp(at))
}
