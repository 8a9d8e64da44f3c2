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

	"github.com/coursecore/ragcore/pkg/model"
)

func TestInferIntentTutorial(t *testing.T) {
	require.Equal(t, model.IntentTutorial, inferIntent("In this tutorial, let's build a REST API step by step."))
}

func TestInferIntentReference(t *testing.T) {
	require.Equal(t, model.IntentReference, inferIntent("API Reference\n\nParameters:\n  name (string)"))
}

func TestInferIntentOverview(t *testing.T) {
	require.Equal(t, model.IntentOverview, inferIntent("Overview: in this course you will learn the fundamentals."))
}

func TestInferIntentUnknownWhenNoIndicatorMatches(t *testing.T) {
	require.Equal(t, model.IntentUnknown, inferIntent("The cat sat on the mat."))
}

func TestInferIntentTutorialTakesPrecedenceOverOverview(t *testing.T) {
	// Contains both a tutorial and an overview indicator; tutorial must win
	// since it is checked first.
	require.Equal(t, model.IntentTutorial, inferIntent("Overview: let's build this step by step."))
}
