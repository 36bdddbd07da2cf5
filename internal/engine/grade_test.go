package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name       string
		percentage int
		wantKey    string
		wantLevel  models.Severity
	}{
		{"zero", 0, "critical", models.SeverityLow},
		{"below unstable", 39, "critical", models.SeverityLow},
		{"unstable boundary", 40, "unstable", models.SeverityLow},
		{"developing boundary", 60, "developing", models.SeverityMedium},
		{"upper developing", 84, "developing", models.SeverityMedium},
		{"mature boundary", 85, "mature", models.SeverityHigh},
		{"perfect", 100, "mature", models.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(testBands(), tt.percentage)
			assert.Equal(t, tt.wantKey, got.Key)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestGrade_UnorderedBands(t *testing.T) {
	bands := []models.GradeBand{
		{MinPercentage: 85, Key: "mature"},
		{MinPercentage: 0, Key: "critical"},
		{MinPercentage: 60, Key: "developing"},
	}

	assert.Equal(t, "developing", Grade(bands, 70).Key)
	assert.Equal(t, "critical", Grade(bands, 10).Key)
	assert.Equal(t, "mature", Grade(bands, 99).Key)
}

func TestGrade_DoesNotReorderInput(t *testing.T) {
	bands := testBands()
	Grade(bands, 50)
	assert.Equal(t, "critical", bands[0].Key)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, max, want int
	}{
		{25, 40, 63},
		{10, 20, 50},
		{1, 3, 33},
		{2, 3, 67},
		{0, 10, 0},
		{10, 10, 100},
		{0, 0, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.score, tt.max), "Percentage(%d, %d)", tt.score, tt.max)
	}
}
