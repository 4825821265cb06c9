package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
)

func TestBuildComparisonXLSX(t *testing.T) {
	confidence := 0.93
	ok := &entity.ComparisonResult{
		Analysis: entity.ChangeAnalysis{
			SectionsChanged:    []string{"Section 4.2", "Section 9"},
			TopicsTouched:      []string{"Payment Terms"},
			SummaryOfTheChange: "Payment window extended from thirty to forty-five days.",
			ConfidenceScore:    &confidence,
		},
		ProcessingMetadata: map[string]any{"session_id": "sess-ok"},
	}

	rows := []Row{
		{OriginalFile: "a.png", AmendmentFile: "a-amend.png", Result: ok},
		{OriginalFile: "b.png", AmendmentFile: "b-amend.png", Err: errors.New("all vision models failed")},
	}

	data, err := NewService(nil).BuildComparisonXLSX(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Comparisons"}, f.GetSheetList(), "default sheet dropped")

	got, err := f.GetRows("Comparisons")
	require.NoError(t, err)
	require.Len(t, got, 3, "header plus one row per input pair")

	assert.Equal(t, "Original", got[0][0])

	assert.Equal(t, "a.png", got[1][0])
	assert.Equal(t, "OK", got[1][2])
	assert.Equal(t, "sess-ok", got[1][3])
	assert.Equal(t, "Section 4.2; Section 9", got[1][4])
	assert.Equal(t, "0.93", got[1][6])

	assert.Equal(t, "FAILED", got[2][2])
	require.Greater(t, len(got[2]), 8)
	assert.Contains(t, got[2][8], "vision models failed")
}

func TestBuildComparisonXLSXEmptyBatch(t *testing.T) {
	data, err := NewService(nil).BuildComparisonXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "headers-only workbook is still valid")
}
