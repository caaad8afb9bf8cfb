/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package version reports the netbridge build, injected with -ldflags.
package version

import "fmt"

//nolint:gochecknoglobals // set via -ldflags "-X"
var (
	version = "dev"
	buildID = "dev"
	commit  = ""
)

// Version returns the release version.
func Version() string {
	return version
}

// BuildID returns the build identifier.
func BuildID() string {
	return buildID
}

// Full returns version, build and, when known, the commit.
func Full() string {
	if commit == "" {
		return fmt.Sprintf("%s (build: %s)", version, buildID)
	}

	return fmt.Sprintf("%s (build: %s, commit: %s)", version, buildID, commit)
}
