/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements the translation project on disk.
// A project root holds project.json, the native page artifacts under pages/ and JPEG thumbnails under thumbs/.
// project.json is written with temp file, fsync and rename, and validated against an embedded JSON schema on load.
// The per-project SQLite file <root>/index.sqlite indexes every page's translation pairs for full-text search.
// It is derived from the page carriers and is rebuildable.
package storage
