// Copyright 2025 Poiesic Systems
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


// Package mock provides test doubles for the ai package interfaces.
//
// Every mock is deterministic and offline. Behavior can be replaced per
// method through the exported XFunc fields, and call counts are tracked
// so tests can assert that a stage ran, or that it was skipped.
//
// # Usage
//
//	provider := mock.NewMockProvider().(*mock.MockProvider)
//	provider.GetMockSynthesizer().SynthesizeFunc = func(ctx context.Context, q string, p []string) (string, error) {
//	    return "", errors.New("model overloaded")
//	}
//
//	// Later
//	count := provider.GetMockSynthesizer().CallCount()
//
// # Default Behavior
//
//   - MockTranscriber: returns the audio bytes as the transcript
//   - MockEmbedder: returns unit vectors derived from a hash of the text
//   - MockSynthesizer: returns a summary naming the question and passage count
//   - MockProvider: aggregates the three
package mock
