package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Product is the name sent in the default User-Agent header.
const Product = "httpservice"

var (
	// Set at build time with -ldflags.
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns build information, filling blanks from the embedded VCS
// stamp when the binary was built from a checkout.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
			}
		case "vcs.modified":
			info.IsDirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = setting.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns the version with the abbreviated commit, e.g. "1.2.0-abc1234".
func Short() string {
	info := Get()
	switch {
	case info.GitCommit == "":
		return info.Version
	case info.IsDirty:
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	default:
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
}

// UserAgent returns the default User-Agent value, e.g. "httpservice/1.2.0".
func UserAgent() string {
	return Product + "/" + Version
}

// String renders the info on one line for the version command.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", Product, i.Version)
	if i.GitCommit != "" {
		fmt.Fprintf(&b, " (%s", i.GitCommit)
		if i.IsDirty {
			b.WriteString(", dirty")
		}
		b.WriteString(")")
	}
	if !i.BuildDate.IsZero() {
		fmt.Fprintf(&b, " built %s", i.BuildDate.UTC().Format(time.RFC3339))
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, " %s", i.GoVersion)
	}
	return b.String()
}
