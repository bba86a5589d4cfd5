package internal

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestWriteAnalysisHeader(t *testing.T) {
	cfg := &contract.Config{
		CasesFile:       "/data/us-counties.csv",
		PopulationFile:  "co-est2019-alldata.csv",
		ReferenceDate:   time.Date(2020, 3, 8, 0, 0, 0, 0, time.UTC),
		MinObservations: 2,
		MinTotalCases:   1,
		ExcludeStates:   []string{"Alaska", "Hawaii"},
	}

	var buf bytes.Buffer
	writeAnalysisHeader(&buf, cfg)
	assert.Equal(t,
		"Cases: us-counties.csv | Population: co-est2019-alldata.csv | Shapes: none\n"+
			"Reference: 2020-03-08 (min observations: 2, min cases: 1, excluding: Alaska, Hawaii)\n",
		buf.String())

	buf.Reset()
	cfg.UseEmojis = true
	writeAnalysisHeader(&buf, cfg)
	assert.Contains(t, buf.String(), "🔎 Cases")
	assert.Contains(t, buf.String(), "📅 Reference")
}

func TestWriteTrendHeader(t *testing.T) {
	var buf bytes.Buffer
	writeTrendHeader(&buf, &contract.Config{CasesFile: "cases.csv", States: []string{"Washington"}})
	assert.Equal(t, "Cases: cases.csv | States: Washington\n", buf.String())
}
