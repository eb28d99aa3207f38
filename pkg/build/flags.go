// SPDX-License-Identifier: MIT
//
// Package build carries the metadata stamped into the binary at link time:
//
//	go build -ldflags "-X waveglow/pkg/build.buildName=waveglow \
//	  -X waveglow/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds fall back to the module version recorded by the Go
// toolchain so the CLI always has something to print.
package build

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags for the version banner.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()

	readBuildInfo = debug.ReadBuildInfo
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        "waveglow",
		Description: "Audio-reactive waveform visualiser",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags variables into the build flags. Every
// missing flag is reported; the flags that are set are still applied and
// the missing ones keep their development defaults.
func Initialize() error {
	var errs []error
	set := func(dst *string, value, name string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			return
		}
		*dst = value
	}

	set(&buildFlags.Name, buildName, "BuildName")
	set(&buildFlags.Time, buildTime, "BuildTime")
	set(&buildFlags.Commit, buildCommit, "BuildCommit")
	set(&buildFlags.Version, buildVersion, "BuildVersion")

	if buildVersion == "" {
		if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			buildFlags.Version = info.Main.Version
		}
	}

	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
