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


// Package importer ingests a directory of recorded classes into a room.
//
// Files are discovered by extension, read in batches and handed to the
// ingestion pipeline. A file whose BLAKE2b digest already exists in the
// room is skipped, so an interrupted import can simply be run again.
//
// The ingestion pipeline never retries. The importer is a caller, and
// it retries each whole ingestion with exponential backoff when the
// failure is transient. Validation failures and unknown rooms are not
// retried.
package importer
