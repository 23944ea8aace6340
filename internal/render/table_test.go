package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podium-ml/podium/internal/domain"
)

var (
	testRefs   = []domain.ArtifactRef{"model_B", "model_A"}
	testScores = []float64{0.9, 0.8}
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, "auc", testRefs, testScores))

	out := buf.String()
	assert.Contains(t, out, "artifact_id")
	assert.Contains(t, out, "auc")
	assert.Contains(t, out, "model_B")
	assert.Contains(t, out, "0.900000")

	// The leader renders before the runner-up.
	assert.Less(t, strings.Index(out, "model_B"), strings.Index(out, "model_A"))
}

func TestTable_LengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, "auc", testRefs, []float64{0.9})
	require.Error(t, err)
}

func TestTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TSV(&buf, "auc", testRefs, testScores))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "artifact_id\tauc", lines[0])
	assert.Equal(t, "model_B\t0.900000", lines[1])
	assert.Equal(t, "model_A\t0.800000", lines[2])
}

func TestTSV_EmptyMetricGetsPlaceholderHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TSV(&buf, "", nil, nil))
	assert.Equal(t, "artifact_id\tmetric\n", buf.String())
}

func TestText(t *testing.T) {
	got := Text("iris", "auc", testRefs, testScores, " ; ", " | ", true, true)
	assert.Contains(t, got, `Leaderboard for project "iris":`)
	assert.Contains(t, got, "artifact_id ; auc | ")
	assert.Contains(t, got, "model_B ; 0.900000 | ")
	assert.Contains(t, got, "model_A ; 0.800000 | ")
}

func TestText_Empty(t *testing.T) {
	got := Text("iris", "auc", nil, nil, " ; ", " | ", true, true)
	assert.Equal(t, `Leaderboard for project "iris": <empty>`, got)
}

func TestText_NoTitleNoHeader(t *testing.T) {
	got := Text("iris", "auc", testRefs, testScores, "\t", "\n", false, false)
	assert.Equal(t, "model_B\t0.900000\nmodel_A\t0.800000\n", got)
}

func TestLine(t *testing.T) {
	got := Line("iris", "auc", testRefs, testScores)
	assert.True(t, strings.HasPrefix(got, `Leaderboard for project "iris": `))
	assert.Contains(t, got, " ; ")
	assert.Contains(t, got, " | ")
}
