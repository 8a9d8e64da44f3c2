// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

var weekPattern = regexp.MustCompile(`(?i)week\s*(\d+)`)

var skipComponents = map[string]bool{
	"data":      true,
	"documents": true,
	"files":     true,
	"content":   true,
}

// ApplyPathMetadata fills in the folder-derived fields of doc.Metadata from
// filePath: week_number from the first path component matching
// `week\s*(\d+)` case-insensitively, and module_name from that same
// component, falling back to the first non-root component not in the
// skip-set {data, documents, files, content}.
func ApplyPathMetadata(doc *model.ParsedDocument, filePath string) {
	dir := filepath.Dir(filePath)
	components := splitPathComponents(dir)

	doc.Metadata.FolderPath = dir

	var week *int
	weekComponent := ""
	for _, c := range components {
		if m := weekPattern.FindStringSubmatch(c); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				week = &n
				weekComponent = c
				break
			}
		}
	}
	doc.Metadata.WeekNumber = week

	if weekComponent != "" {
		doc.Metadata.ModuleName = weekComponent
		return
	}

	// The first component is the corpus root directory itself (e.g. the
	// ingest root mount point) and is never a candidate module name.
	for i, c := range components {
		if i == 0 {
			continue
		}
		lower := strings.ToLower(c)
		if c == "" || c == "." || skipComponents[lower] {
			continue
		}
		doc.Metadata.ModuleName = c
		return
	}
}

// splitPathComponents splits a path into its non-empty components,
// stripping any leading volume/root separators.
func splitPathComponents(dir string) []string {
	dir = filepath.ToSlash(dir)
	parts := strings.Split(dir, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
