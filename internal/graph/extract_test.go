package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImports(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "default import",
			content: `import App from './App'`,
			want:    []string{"./App"},
		},
		{
			name:    "named and namespace imports",
			content: "import { a, b } from '../lib/ab'\nimport * as ns from \"./ns\"",
			want:    []string{"../lib/ab", "./ns"},
		},
		{
			name:    "side effect import",
			content: `import './polyfills'`,
			want:    []string{"./polyfills"},
		},
		{
			name:    "dynamic import",
			content: `const Page = lazy(() => import( './pages/Page' ))`,
			want:    []string{"./pages/Page"},
		},
		{
			name:    "require",
			content: `const fs = require('fs'); const u = require("./util")`,
			want:    []string{"./util"},
		},
		{
			name:    "type import",
			content: `import type { Props } from './types'`,
			want:    []string{"./types"},
		},
		{
			name:    "aliases",
			content: "import A from '@/a'\nimport B from '~/b'\nimport C from '@scope/pkg'",
			want:    []string{"@/a", "~/b"},
		},
		{
			name:    "bare packages dropped",
			content: "import React from 'react'\nimport { x } from 'lodash/fp'",
			want:    nil,
		},
		{
			name:    "duplicates collapse",
			content: "import a from './a'\nimport { b } from './a'\nconst c = require('./a')",
			want:    []string{"./a"},
		},
		{
			name:    "pattern order",
			content: "const x = require('./req')\nimport('./dyn')\nimport s from './static'",
			want:    []string{"./static", "./dyn", "./req"},
		},
		{
			name:    "commented import still matches",
			content: `// import old from './old'`,
			want:    []string{"./old"},
		},
		{
			name:    "template literal ignored",
			content: "const m = import(`./locale/${lang}`)",
			want:    nil,
		},
		{
			name:    "re-export not matched",
			content: `export { x } from './x'`,
			want:    nil,
		},
		{
			name:    "empty",
			content: ``,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractImports(tt.content))
		})
	}
}

func TestRegexExtractor(t *testing.T) {
	var e Extractor = RegexExtractor{}
	assert.Equal(t, "regex", e.Name())
	assert.Equal(t, []string{"./b"}, e.Extract("src/a.vue", []byte("<script>import B from './b'</script>")))
}

func TestShouldAnalyzeFile(t *testing.T) {
	for _, name := range []string{"a.ts", "a.tsx", "a.js", "a.jsx", "a.mjs", "a.cjs", "a.vue", "a.svelte", "a.d.ts"} {
		assert.True(t, ShouldAnalyzeFile(name), name)
	}
	for _, name := range []string{"a.css", "a.json", "a.md", "Makefile", "a.ts.bak", "a.go"} {
		assert.False(t, ShouldAnalyzeFile(name), name)
	}
}
