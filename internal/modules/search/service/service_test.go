package service

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	p := bluemonday.StrictPolicy()

	got := CleanText(p, "<p>Location: Hallway</p><p>He   said &amp; did <b>this</b></p>")
	assert.Equal(t, "Location: Hallway He said & did this", got)
}

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, "", buildFilter("", "all"))
	assert.Equal(t, `status = "resolved"`, buildFilter("resolved", ""))
	assert.Equal(t, `status = "pending" AND category = "cyber"`, buildFilter("pending", "cyber"))
}
