package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                               _       _   `, "#34d399"},
	{` __      ____ _ _   _ _ __   ___ (_)_ __ | |_ `, "#2dd4bf"},
	{` \ \ /\ / / _' | | | | '_ \ / _ \| | '_ \| __|`, "#22d3ee"},
	{`  \ V  V / (_| | |_| | |_) | (_) | | | | | |_ `, "#38bdf8"},
	{`   \_/\_/ \__,_|\__, | .__/ \___/|_|_| |_|\__|`, "#60a5fa"},
	{`                |___/|_|                      `, "#818cf8"},
}

// WriteBanner prints the waypoint banner and version to w, colored when w
// supports it.
func WriteBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
