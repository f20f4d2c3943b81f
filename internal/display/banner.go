package display

import (
	"fmt"
	"os"

	"github.com/backmassage/dvdpress/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, `     _          _
  __| |_   ____| |_ __  _ __ ___  ___ ___
 / _`+"`"+` \ \ / / _`+"`"+` | '_ \| '__/ _ \/ __/ __|
| (_| |\ V / (_| | |_) | | |  __/\__ \__ \
 \__,_| \_/ \__,_| .__/|_|  \___||___/___/
                 |_|
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
