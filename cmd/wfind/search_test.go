package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgomes/wikisearch/internal/hits"
)

func TestPrintResults(t *testing.T) {
	resp := &hits.Response{
		SearchTime: 0.0125,
		Results: []hits.Hit{
			{Title: "Albert Einstein", URL: "/wiki/Albert_Einstein", Score: 0.91234, Summary: "Physicist."},
			{Title: "Einstein family", URL: "https://example.org/family", Score: 0.5},
			{Title: "Einsteinium", URL: "/wiki/Einsteinium", Score: 0.25},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, "https://en.wikipedia.org/", "einstein", resp, 2))

	out := buf.String()
	assert.Contains(t, out, "Found 3 results (12.50 milliseconds)")
	assert.Contains(t, out, "1. Albert Einstein  (0.9123)")
	assert.Contains(t, out, "https://en.wikipedia.org/wiki/Albert_Einstein")
	assert.Contains(t, out, "Physicist.")
	assert.Contains(t, out, "https://example.org/family")
	assert.NotContains(t, out, "Einsteinium")
}

func TestPrintResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, "https://en.wikipedia.org", "zzz", &hits.Response{Results: []hits.Hit{}}, 0))
	assert.Equal(t, "No results found for \"zzz\"\n", buf.String())
}
