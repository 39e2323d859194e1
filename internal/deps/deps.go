package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/recording"
)

// versionTimeout bounds each version command.
const versionTimeout = 2 * time.Second

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program hyprlingo shells out to.
type Tool struct {
	Name        string
	Purpose     string
	VersionArgs []string
	// Required tools stop sessions from starting when missing.
	Required bool
}

var (
	PwRecord   = Tool{Name: "pw-record", Purpose: "PipeWire capture", VersionArgs: []string{"--version"}}
	NotifySend = Tool{Name: "notify-send", Purpose: "desktop notifications", VersionArgs: []string{"--version"}}
)

// Check looks name up in PATH and reads the first line of its version
// output when it is there.
func Check(name string, versionArgs ...string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if len(versionArgs) == 0 {
		return status
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, versionArgs...).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

func (t Tool) Check() Status {
	return Check(t.Name, t.VersionArgs...)
}

// ForConfig lists the tools a configuration will call.
func ForConfig(backend, notifications string) []Tool {
	var tools []Tool
	if backend == "" || backend == recording.BackendPipeWire {
		pw := PwRecord
		pw.Required = true
		tools = append(tools, pw)
	}
	if notifications == "desktop" {
		tools = append(tools, NotifySend)
	}
	return tools
}
