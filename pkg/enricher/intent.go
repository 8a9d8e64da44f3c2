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
	"strings"

	"github.com/coursecore/ragcore/pkg/model"
)

// Ordered so the first matching class wins, per §4.3: tutorial before
// reference before overview.
var intentIndicators = []struct {
	intent     model.DocumentIntent
	indicators []string
}{
	{model.IntentTutorial, []string{"step by step", "let's build", "in this tutorial", "follow along", "exercise", "walkthrough", "how to"}},
	{model.IntentReference, []string{"api reference", "parameters:", "returns:", "syntax:", "specification", "reference manual"}},
	{model.IntentOverview, []string{"overview", "introduction to", "in this course", "agenda", "what you will learn"}},
}

// inferIntent returns the first matching class from intentIndicators, or
// IntentUnknown if none match.
func inferIntent(text string) model.DocumentIntent {
	lower := strings.ToLower(text)
	for _, class := range intentIndicators {
		for _, indicator := range class.indicators {
			if strings.Contains(lower, indicator) {
				return class.intent
			}
		}
	}
	return model.IntentUnknown
}
