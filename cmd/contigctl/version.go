package main

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const libraryPath = "github.com/joshuapare/contigmem"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	Library   string `json:"library"`
	GoVersion string `json:"go_version"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildVersion fills in what ldflags left unset from the embedded build info.
// The allocator library version comes from the module graph, "(devel)" when
// built from a replace directive.
func buildVersion(info *debug.BuildInfo, ok bool) versionInfo {
	v := versionInfo{Version: version, Commit: commit, Built: date, Library: "unknown", GoVersion: "unknown"}
	if !ok || info == nil {
		return v
	}
	v.GoVersion = info.GoVersion
	if v.Version == "dev" && info.Main.Version != "" {
		v.Version = info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != libraryPath {
			continue
		}
		v.Library = dep.Version
		if dep.Replace != nil {
			v.Library = "(devel) => " + dep.Replace.Path
		}
		break
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "none" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if v.Built == "unknown" {
				v.Built = s.Value
			}
		}
	}
	return v
}

func runVersion() error {
	v := buildVersion(debug.ReadBuildInfo())
	if jsonOut {
		return printJSON(v)
	}
	printInfo("contigctl %s\n", v.Version)
	printInfo("  commit: %s\n", v.Commit)
	printInfo("  built: %s\n", v.Built)
	printInfo("  contigmem: %s\n", v.Library)
	printInfo("  go: %s\n", v.GoVersion)
	return nil
}
