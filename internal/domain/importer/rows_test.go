package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartraise/internal/platform/apperr"
)

func TestNormalizeHeader(t *testing.T) {
	for _, in := range []string{"kpiScore", "KPI Score", "kpi_score", " kpi-score ", "\ufeffKpiScore"} {
		assert.Equal(t, colKPIScore, normalizeHeader(in), in)
	}
}

func TestDecodeRow(t *testing.T) {
	h := newHeader([]string{"Name", "Salary", "KPI Score", "attendance", "peer_review", "Department"})

	row, err := h.decode([]string{" Ann ", "1,250.50", "0", "", "12"}, 4)
	require.NoError(t, err)
	assert.Equal(t, "Ann", row.Name)
	require.NotNil(t, row.Salary)
	assert.Equal(t, 1250.5, *row.Salary)
	assert.Nil(t, row.Attendance)
	assert.Nil(t, row.Department)
	assert.True(t, row.HasMetrics())
	assert.Equal(t, 0.0, row.Metrics().Attendance)
	assert.Equal(t, 12.0, row.Metrics().PeerReview)
}

func TestDecodeRejectsNonFiniteNumbers(t *testing.T) {
	h := newHeader([]string{"name", "salary", "kpiScore"})
	for _, raw := range []string{"Inf", "-Infinity", "NaN", "1e999"} {
		_, err := h.decode([]string{"Ann", "100", raw}, 7)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, raw)
		assert.Equal(t, apperr.KindValidation, appErr.Kind, raw)
		require.Len(t, appErr.Issues, 1, raw)
		assert.Equal(t, "row 7: kpiscore", appErr.Issues[0].Field, raw)
	}
}

func TestHasMetricsIgnoresZeros(t *testing.T) {
	h := newHeader([]string{"name", "kpiScore", "attendance", "peerReview"})
	row, err := h.decode([]string{"Ann", "0", "0", ""}, 2)
	require.NoError(t, err)
	assert.False(t, row.HasMetrics())
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "a.csv", want: FormatCSV, wantOK: true},
		{name: "A.XLSX", want: FormatXLSX, wantOK: true},
		{name: "legacy.xls", want: FormatXLS, wantOK: true},
		{name: "notes.txt"},
		{name: "noext"},
	}
	for _, tc := range tests {
		got, ok := FormatOf(tc.name)
		assert.Equal(t, tc.wantOK, ok, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}
