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

package enricher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultEntityExtractorFindsDates(t *testing.T) {
	out := DefaultEntityExtractor{}.Extract("The assignment is due January 15, 2026 or by 01/20/2026.")
	var found []string
	for _, e := range out {
		if e.Type == "date" {
			found = append(found, e.Text)
		}
	}
	require.Contains(t, found, "January 15, 2026")
	require.Contains(t, found, "01/20/2026")
}

func TestDefaultEntityExtractorClassifiesOrganizations(t *testing.T) {
	out := DefaultEntityExtractor{}.Extract("This course was developed at Stanford University with support from Acme Corp.")
	byText := map[string]string{}
	for _, e := range out {
		byText[e.Text] = e.Type
	}
	require.Equal(t, "organization", byText["Stanford University"])
	require.Equal(t, "organization", byText["Acme Corp"])
}

func TestDefaultEntityExtractorClassifiesPersonsByDefault(t *testing.T) {
	out := DefaultEntityExtractor{}.Extract("Ada Lovelace wrote the first published algorithm.")
	found := false
	for _, e := range out {
		if e.Text == "Ada Lovelace" {
			require.Equal(t, "person", e.Type)
			found = true
		}
	}
	require.True(t, found)
}

func TestDefaultEntityExtractorSkipsSingleCapitalizedWords(t *testing.T) {
	out := DefaultEntityExtractor{}.Extract("Python is a popular language.")
	for _, e := range out {
		require.NotEqual(t, "Python", e.Text)
	}
}

func TestDefaultEntityExtractorDedupsRepeatedSpans(t *testing.T) {
	out := DefaultEntityExtractor{}.Extract("Ada Lovelace met Ada Lovelace again.")
	count := 0
	for _, e := range out {
		if e.Text == "Ada Lovelace" {
			count++
		}
	}
	require.Equal(t, 1, count)
}
