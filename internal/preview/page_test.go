package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWrapsFragment(t *testing.T) {
	fragment := `<div class="issue-template"><h1>Bug</h1></div>`

	doc, err := Page(fragment, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, fragment)
	assert.Contains(t, doc, "<title>"+DefaultTitle+"</title>")
	assert.Contains(t, doc, "default-src 'none'; style-src 'unsafe-inline';")
	assert.Contains(t, doc, ".checkbox-option")
	assert.NotContains(t, doc, `http-equiv="refresh"`)
}

func TestPageEscapesTitle(t *testing.T) {
	doc, err := Page("", Options{Title: "<b>bug.yml</b>"})
	require.NoError(t, err)

	assert.Contains(t, doc, "<title>&lt;b&gt;bug.yml&lt;/b&gt;</title>")
}

func TestPageRefresh(t *testing.T) {
	doc, err := Page("", Options{RefreshSeconds: 2})
	require.NoError(t, err)

	assert.Contains(t, doc, `<meta http-equiv="refresh" content="2">`)
}
