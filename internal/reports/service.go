// Package reports builds the disease trend report served to the report generator.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/detection"

	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
	unknownLocation = "Unknown"
)

// RecordSource loads detection records with their users in a time range.
type RecordSource interface {
	FindRecordsBetween(ctx context.Context, start, end time.Time) ([]detection.DetectionRecord, error)
}

type Row struct {
	DiseaseName string `json:"disease_name"`
	DetectedAt  string `json:"detected_at"`
	Location    string `json:"location"`
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	Total      int     `json:"total"`
	ByDisease  []Count `json:"by_disease"`
	ByLocation []Count `json:"by_location"`
}

// DiseaseTrend is the report body. StartDate and EndDate are empty for an unbounded report.
type DiseaseTrend struct {
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Rows      []Row   `json:"rows"`
	Summary   Summary `json:"summary"`
}

type Service interface {
	DiseaseTrend(ctx context.Context, startDate, endDate string) (*DiseaseTrend, error)
}

type service struct {
	source      RecordSource
	maxLookback int
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(source RecordSource, cfg *config.Config, logger *zap.Logger) Service {
	logger = logger.Named("ReportService")
	loc, err := time.LoadLocation(cfg.DBTimezone)
	if err != nil || cfg.DBTimezone == "" {
		logger.Warn("Unknown report timezone, using UTC", zap.String("timezone", cfg.DBTimezone))
		loc = time.UTC
	}
	return &service{
		source:      source,
		maxLookback: cfg.ReportMaxLookbackDays,
		location:    loc,
		logger:      logger,
		now:         time.Now,
	}
}

// parseRange validates the optional date window. Both dates must be given together,
// start may be at most maxLookback days ago, end may not be in the future.
func (s *service) parseRange(startDate, endDate string) (start, end time.Time, err error) {
	if startDate == "" && endDate == "" {
		return time.Time{}, time.Time{}, nil
	}
	if startDate == "" || endDate == "" {
		return start, end, common.ErrBadRequest.WithDetails("Both start_date and end_date are required")
	}

	details := map[string]string{}
	start, perr := time.ParseInLocation(dateLayout, startDate, s.location)
	if perr != nil {
		details["start_date"] = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	}
	end, perr = time.ParseInLocation(dateLayout, endDate, s.location)
	if perr != nil {
		details["end_date"] = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	}
	if len(details) > 0 {
		return start, end, common.NewValidationAPIError(details)
	}

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	earliest := today.AddDate(0, 0, -s.maxLookback)
	switch {
	case start.Before(earliest):
		details["start_date"] = fmt.Sprintf("Start date cannot be older than %d days ago.", s.maxLookback)
	case end.After(today):
		details["end_date"] = "End date cannot be in the future."
	case start.After(end):
		details["start_date"] = "Start date must be before or equal to end date."
	}
	if len(details) > 0 {
		return start, end, common.NewValidationAPIError(details)
	}

	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), s.location)
	return start, endOfDay, nil
}

func (s *service) DiseaseTrend(ctx context.Context, startDate, endDate string) (*DiseaseTrend, error) {
	start, end, err := s.parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	records, err := s.source.FindRecordsBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("Failed to load detection records for report", zap.Error(err))
		return nil, err
	}

	report := &DiseaseTrend{StartDate: startDate, EndDate: endDate, Rows: make([]Row, 0, len(records))}
	byDisease := newCounter()
	byLocation := newCounter()
	for _, r := range records {
		location := unknownLocation
		if r.User != nil && r.User.District != nil && *r.User.District != "" {
			location = *r.User.District
		}
		report.Rows = append(report.Rows, Row{
			DiseaseName: r.DetectedDisease,
			DetectedAt:  r.DetectedAt.In(s.location).Format(timestampLayout),
			Location:    location,
		})
		byDisease.add(r.DetectedDisease)
		byLocation.add(location)
	}
	report.Summary = Summary{
		Total:      len(records),
		ByDisease:  byDisease.sorted(),
		ByLocation: byLocation.sorted(),
	}
	return report, nil
}

type counter struct {
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(name string) {
	c.counts[name]++
}

// sorted orders by count descending, then name.
func (c *counter) sorted() []Count {
	out := make([]Count, 0, len(c.counts))
	for name, n := range c.counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
