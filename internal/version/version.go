package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/keycalc/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/keycalc/internal/version.Commit=abc123"
//
// Anything left empty is filled from the module's VCS build info, then
// falls back to a dev stamp.
var (
	Version = ""
	Commit  = ""
	// BuildDate is the commit time when known
	BuildDate = ""
)

func init() {
	if Version == "" || Commit == "" || BuildDate == "" {
		populateFromBuildInfo(readBuildInfo())
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func readBuildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

func populateFromBuildInfo(info *debug.BuildInfo) {
	if info == nil {
		return
	}

	// Tagged module builds (go install ...@v1.2.3) carry a real version
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	var revision, modified, vcsTime string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = revision
		if len(Commit) > 7 {
			Commit = Commit[:7]
		}
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	if vcsTime == "" {
		return
	}
	t, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return
	}
	if BuildDate == "" {
		BuildDate = t.UTC().Format("2006-01-02")
	}
	if Version == "" {
		Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
	}
}

// Info is the version report printed by `keycalc version` and sent to
// remote clients.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the version info of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders e.g. "v0.3.0 (commit: abc123, built 2026-01-02)"
func (i Info) String() string {
	if i.BuildDate == "" {
		return fmt.Sprintf("%s (commit: %s)", i.Version, i.Commit)
	}
	return fmt.Sprintf("%s (commit: %s, built %s)", i.Version, i.Commit, i.BuildDate)
}

// Full returns the full version string including commit
func Full() string {
	return Get().String()
}
