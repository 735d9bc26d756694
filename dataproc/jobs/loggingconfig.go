// Copyright 2026 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jobs

import (
	"fmt"
	"sort"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// ParseLoggingConfig parses driver log levels given as "package=LEVEL"
// pairs, e.g. "root=INFO" or "com.google = FATAL".
//
// Returns nil for an empty list. A package given twice is an error.
func ParseLoggingConfig(pairs []string) (*LoggingConfig, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cfg := &LoggingConfig{DriverLogLevels: make(map[string]Level, len(pairs))}
	for _, pair := range pairs {
		pkg, lvl, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Reason("bad driver log level %q: want package=LEVEL", pair).Err()
		}
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			return nil, errors.Reason("bad driver log level %q: empty package name", pair).Err()
		}
		level, err := ParseLevel(strings.ToUpper(strings.TrimSpace(lvl)))
		if err != nil {
			return nil, errors.Annotate(err, "bad driver log level %q", pair).Err()
		}
		if _, dup := cfg.DriverLogLevels[pkg]; dup {
			return nil, errors.Reason("package %q is given more than once", pkg).Err()
		}
		cfg.DriverLogLevels[pkg] = level
	}
	return cfg, nil
}

// String formats the config as sorted "package=LEVEL" pairs joined by
// commas.
func (c *LoggingConfig) String() string {
	if c == nil {
		return ""
	}
	pkgs := make([]string, 0, len(c.DriverLogLevels))
	for pkg := range c.DriverLogLevels {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	parts := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		parts[i] = fmt.Sprintf("%s=%s", pkg, c.DriverLogLevels[pkg])
	}
	return strings.Join(parts, ",")
}
