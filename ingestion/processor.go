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


package ingestion

import (
	"context"
	"time"

	"github.com/poiesic/auditorium/core"
)

// item is the unit of work flowing through the stages.
type item struct {
	roomID   core.ID
	audio    []byte
	mimeType string
	chunk    *core.AudioChunk
}

// processor is one stage of ingestion. Each stage fills in part of the
// chunk and classifies its own failures.
type processor interface {
	// process runs the stage on it. Errors wrap the stage's error kind.
	process(ctx context.Context, it *item) error
	// kind is the core error kind the stage reports.
	kind() error
}

// stageContext bounds a stage. Zero disables the bound.
func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
