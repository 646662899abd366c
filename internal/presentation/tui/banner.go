package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner outputs the easel ASCII banner with the given version. Piped
// output gets no banner, so scripts reading stdout see records only.
func PrintBanner(version string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	p := termenv.ColorProfile()
	lines := []string{
		`  ______                 _ `,
		` |  ____|               | |`,
		` | |__    __ _ ___  ___ | |`,
		` |  __|  / _` + "`" + ` / __|/ _ \| |`,
		` | |____| (_| \__ \  __/| |`,
		` |______|\__,_|___/\___||_|`,
	}
	// Cyan-to-green gradient, one shade per line.
	shades := []string{"#38bdf8", "#22d3ee", "#2dd4bf", "#34d399", "#4ade80", "#a3e635"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(shades[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Faint())
	}
	fmt.Println()
}
