package graph

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readFixture reads a test fixture file relative to the project root.
// Tests run from internal/graph/, so the relative path is ../../testdata/...
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

// ---------------------------------------------------------------------------
// TestTreeSitterExtractor
// ---------------------------------------------------------------------------

func TestTreeSitterExtractor_Name(t *testing.T) {
	assert.Equal(t, "treesitter", NewTreeSitterExtractor().Name())
}

func TestTreeSitterExtractor_GrammarCoversAnalyzableExtensions(t *testing.T) {
	e := NewTreeSitterExtractor()
	for _, ext := range AnalyzableExtensions {
		switch ext {
		case ".vue", ".svelte":
			assert.Nil(t, e.grammarFor("src/a"+ext), ext)
		default:
			assert.NotNil(t, e.grammarFor("src/a"+ext), ext)
		}
	}
	assert.Same(t, e.typescript, e.grammarFor("src/a.ts"))
	assert.Same(t, e.tsx, e.grammarFor("src/a.tsx"))
	assert.Nil(t, e.grammarFor("src/a.mts"))
}

func TestTreeSitterExtractor_TypeScript(t *testing.T) {
	src := []byte(`import { a } from './a'
import type { T } from "./types"
import * as ns from '../ns'
import './side-effect'
import React from 'react'
export { b } from './b'
export * from '@/barrel'
export const local = 1

const lazy = () => import('./lazy')
const cjs = require('~/cjs')
const other = someFn('./not-an-import')
`)

	got := NewTreeSitterExtractor().Extract("src/mod.ts", src)
	assert.Equal(t, []string{
		"./a", "./types", "../ns", "./side-effect", "./b", "@/barrel", "./lazy", "~/cjs",
	}, got)
}

func TestTreeSitterExtractor_IgnoresComments(t *testing.T) {
	src := []byte(`// import old from './old'
/* require('./older') */
const s = "import x from './in-string'"
import live from './live'
`)

	got := NewTreeSitterExtractor().Extract("src/mod.ts", src)
	assert.Equal(t, []string{"./live"}, got)

	// The regex extractor matches all of them.
	assert.ElementsMatch(t, []string{"./old", "./older", "./in-string", "./live"},
		RegexExtractor{}.Extract("src/mod.ts", src))
}

func TestTreeSitterExtractor_JSX(t *testing.T) {
	src := []byte(`import Button from './Button'
export default function App() {
  return <Button onClick={() => import('./modal')}>Hi</Button>
}
`)

	for _, path := range []string{"src/App.tsx", "src/App.jsx", "src/App.js"} {
		got := NewTreeSitterExtractor().Extract(path, src)
		assert.Equal(t, []string{"./Button", "./modal"}, got, path)
	}
}

func TestTreeSitterExtractor_CommonJS(t *testing.T) {
	src := []byte(`'use strict'
const a = require('./a')
const { b } = require("../b")
module.exports = { a, b }
`)

	for _, path := range []string{"lib/index.cjs", "lib/index.mjs"} {
		got := NewTreeSitterExtractor().Extract(path, src)
		assert.Equal(t, []string{"./a", "../b"}, got, path)
	}
}

func TestTreeSitterExtractor_ComputedSpecifiersSkipped(t *testing.T) {
	src := []byte("const m = import(`./locale/${lang}`)\nconst n = require(name)\n")

	got := NewTreeSitterExtractor().Extract("src/i18n.ts", src)
	assert.Empty(t, got)
}

func TestTreeSitterExtractor_FallbackForComponents(t *testing.T) {
	src := []byte("<script setup lang=\"ts\">\nimport Child from './Child.vue'\n</script>\n<template><Child/></template>\n")

	e := NewTreeSitterExtractor()
	assert.Equal(t, []string{"./Child.vue"}, e.Extract("src/App.vue", src))
	assert.Equal(t, []string{"./Child.vue"}, e.Extract("src/App.svelte", src))

	e.Fallback = nil
	assert.Empty(t, e.Extract("src/App.vue", src))
}

func TestTreeSitterExtractor_EmptyFile(t *testing.T) {
	assert.Empty(t, NewTreeSitterExtractor().Extract("src/empty.ts", nil))
}

func TestTreeSitterExtractor_Fixture(t *testing.T) {
	src := readFixture(t, "testdata/fixtures/ts_project/src/App.tsx")

	got := NewTreeSitterExtractor().Extract("src/App.tsx", src)
	assert.Equal(t, RegexExtractor{}.Extract("src/App.tsx", src), got)
}

func TestAnalyze_TreeSitterExtractor(t *testing.T) {
	tree := memTree{files: map[string]string{
		"src/index.ts":   "export * from './a'\nexport { b } from './b'",
		"src/a.ts":       "// import './b'\nexport const a = 1",
		"src/b.ts":       "export const b = 2",
		"src/legacy.vue": "<script>import A from './a'</script>",
	}}

	g := analyze(t, tree, func(o *Options) { o.Extractor = NewTreeSitterExtractor() })

	assert.ElementsMatch(t, []string{
		"src/index.ts -> src/a.ts",
		"src/index.ts -> src/b.ts",
		"src/legacy.vue -> src/a.ts",
	}, edgePairs(g))
}
