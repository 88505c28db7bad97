package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

var march = domain.Month{Year: 2025, Month: 3}

func TestReportingService_GenerateReport(t *testing.T) {
	svc := NewReportingService(seedDirectory())

	report, err := svc.GenerateReport(context.Background(), domain.ReportFilter{Month: march})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ana Lopez", "bo"}, report.Columns)
	names := make([]string, len(report.Rows))
	for i, r := range report.Rows {
		names[i] = r.Project
	}
	assert.Equal(t, []string{"Atlas", "Beacon", "Comet", "Dormant", "Elsewhere"}, names)

	atlas := report.Rows[0]
	assert.True(t, hours("2").Equal(atlas.UsersHours["Ana Lopez"]))
	assert.True(t, hours("5").Equal(atlas.UsersHours["bo"]))
	assert.True(t, hours("7").Equal(atlas.ProjectTotal))

	assert.True(t, hours("8").Equal(report.GrandTotal))
	assert.True(t, hours("3").Equal(report.UserTotals["Ana Lopez"]))
	assert.Equal(t, SelectShape(true, true), report.Shape)
}

func TestReportingService_GenerateReportValidatesFilter(t *testing.T) {
	svc := NewReportingService(seedDirectory())

	_, err := svc.GenerateReport(context.Background(), domain.ReportFilter{})
	require.Error(t, err)

	bad := int64(0)
	_, err = svc.GenerateReport(context.Background(), domain.ReportFilter{Month: march, UserID: &bad})
	require.Error(t, err)
}

func TestReportingService_GenerateReportPropagatesReadFailure(t *testing.T) {
	boom := errors.NewServiceError("list time records", 503, nil)
	svc := NewReportingService(failingDirectory{Memory: seedDirectory(), err: boom})

	_, err := svc.GenerateReport(context.Background(), domain.ReportFilter{Month: march})
	assert.ErrorIs(t, err, boom)
}

func TestReportingService_ProjectBreakdown(t *testing.T) {
	dir := seedDirectory()
	dir.AddRecord(domain.TimeRecord{UserID: anaID, ProjectID: atlasID, Date: domain.MustParseDate("2025-03-03"), Hours: hours("1.25"), Note: "standup"})
	dir.AddRecord(domain.TimeRecord{UserID: anaID, ProjectID: atlasID, Date: domain.MustParseDate("2025-04-01"), Hours: hours("9"), Note: "april"})
	svc := NewReportingService(dir)

	b, err := svc.ProjectBreakdown(context.Background(), march, atlasID, nil)
	require.NoError(t, err)

	assert.Equal(t, "Atlas", b.Project.Name)
	require.Len(t, b.Employees, 2)

	ana := b.Employees[0]
	assert.Equal(t, "Ana Lopez", ana.Name)
	require.Len(t, ana.Entries, 2)
	assert.Equal(t, domain.MustParseDate("2025-03-03"), ana.Entries[0].Date)
	assert.True(t, hours("3.25").Equal(ana.Subtotal))

	assert.Equal(t, "bo", b.Employees[1].Name)
	assert.True(t, hours("8.25").Equal(b.Total))

	only, err := svc.ProjectBreakdown(context.Background(), march, atlasID, int64Ptr(boID))
	require.NoError(t, err)
	require.Len(t, only.Employees, 1)
	assert.True(t, hours("5").Equal(only.Total))

	_, err = svc.ProjectBreakdown(context.Background(), march, 404, nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func sampleReport(filter domain.ReportFilter) *domain.Report {
	records, users, projects := aggregationFixture()
	rows := Aggregate(records, users, projects, filter)
	return &domain.Report{
		Month:      filter.Month,
		Filter:     filter,
		Columns:    Columns(users, filter),
		Rows:       rows,
		UserTotals: UserTotals(rows),
		GrandTotal: GrandTotal(rows),
		Shape:      ShapeFor(filter),
	}
}

func TestReportTable_FollowsShape(t *testing.T) {
	tests := []struct {
		name       string
		filter     domain.ReportFilter
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "all users all projects",
			filter:     domain.ReportFilter{Month: march},
			wantHeader: []string{"Project", "Ana Lopez", "bo", "Total"},
			wantRows: [][]string{
				{"Atlas", "3.50", "4.00", "7.50"},
				{"Beacon", "0.00", "3.00", "3.00"},
				{"Total", "3.50", "7.00", "10.50"},
			},
		},
		{
			name:       "all users one project",
			filter:     domain.ReportFilter{Month: march, ProjectID: int64Ptr(11)},
			wantHeader: []string{"Project", "Ana Lopez", "bo", "Total"},
			wantRows: [][]string{
				{"Beacon", "0.00", "3.00", "3.00"},
			},
		},
		{
			name:       "one user all projects",
			filter:     domain.ReportFilter{Month: march, UserID: int64Ptr(2)},
			wantHeader: []string{"Project", "bo"},
			wantRows: [][]string{
				{"Atlas", "4.00"},
				{"Beacon", "3.00"},
				{"Total", "7.00"},
			},
		},
		{
			name:       "one user one project",
			filter:     domain.ReportFilter{Month: march, UserID: int64Ptr(1), ProjectID: int64Ptr(10)},
			wantHeader: []string{"Project", "Ana Lopez"},
			wantRows: [][]string{
				{"Atlas", "3.50"},
				{"Total", "3.50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows := ReportTable(sampleReport(tt.filter))
			assert.Equal(t, tt.wantHeader, header)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestReportTable_SingleColumnWithoutUserName(t *testing.T) {
	report := sampleReport(domain.ReportFilter{Month: march, UserID: int64Ptr(1), ProjectID: int64Ptr(10)})
	report.Columns = nil

	header, rows := ReportTable(report)
	assert.Equal(t, []string{"Project", "Hours"}, header)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Total", "3.50"}, rows[len(rows)-1])
}

func TestRenderer_Formats(t *testing.T) {
	report := sampleReport(domain.ReportFilter{Month: march})

	t.Run("csv", func(t *testing.T) {
		r, err := NewRenderer("CSV", false)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, r.RenderReport(&buf, report))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, []string{"Project", "Ana Lopez", "bo", "Total"}, records[0])
	})

	t.Run("json", func(t *testing.T) {
		r, err := NewRenderer("json", false)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, r.RenderReport(&buf, report))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "2025-03", decoded["month"])
		assert.Equal(t, "10.5", decoded["grand_total"])
	})

	t.Run("table", func(t *testing.T) {
		r, err := NewRenderer("", false)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, r.RenderReport(&buf, report))

		out := buf.String()
		assert.Contains(t, out, "Report for March 2025")
		assert.Contains(t, out, "Ana Lopez")
		assert.Contains(t, out, "10.50")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewRenderer("pdf", false)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	})
}

func TestRenderer_Breakdown(t *testing.T) {
	b := &domain.ProjectBreakdown{
		Project: domain.Project{ID: 10, Name: "Atlas"},
		Month:   march,
		Employees: []domain.EmployeeHours{
			{
				Name:     "Ana Lopez",
				Entries:  []domain.TimeRecord{{Date: domain.MustParseDate("2025-03-05"), Hours: hours("2"), Note: "review"}},
				Subtotal: hours("2"),
			},
		},
		Total: hours("2"),
	}

	header, rows := BreakdownTable(b)
	assert.Equal(t, []string{"Employee", "Date", "Hours", "Note"}, header)
	assert.Equal(t, [][]string{
		{"Ana Lopez", "2025-03-05", "2.00", "review"},
		{"Ana Lopez subtotal", "", "2.00", ""},
		{"Total", "", "2.00", ""},
	}, rows)

	r, err := NewRenderer(FormatTable, true)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.RenderBreakdown(&buf, b))
	assert.Contains(t, buf.String(), "review")
}
