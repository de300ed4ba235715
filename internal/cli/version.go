package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

// versionInfo — данные команды version.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	APIURL  string `json:"api_url" yaml:"api_url"`
}

// NewVersionCmd создаёт команду version.
func NewVersionCmd(version string, clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version: version,
				Go:      runtime.Version(),
				OS:      runtime.GOOS + "/" + runtime.GOARCH,
				APIURL:  clientFn().BaseURL(),
			}

			rows := []render.Row{
				render.NewRow("version", info.Version),
				render.NewRow("go", info.Go),
				render.NewRow("os", info.OS),
				render.NewRow("api_url", info.APIURL),
			}
			return outputFn().Print([]string{"KEY", "VALUE"}, rows, info)
		},
	}
}
