package version

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nsqlite/sqlitekit/internal/sqlitec"
)

// Version is the release of the sqlitekit tools.
const Version = "v0.1.0"

const asciiArt = `
         ___ __       __   _ __ 
   _____/ (_) /____  / /__(_) /_
  (_-< _ / / __/ -_)/  '_/ / __/
 /___\_, /_/\__/\__//_/\_\/_/\__/ 
      /_/`

// Banner returns the colored banner printed by the sqlitekit commands,
// naming the tool and the linked SQLite library.
func Banner(tool string) string {
	art := color.New(color.FgCyan, color.Bold).Sprint(asciiArt[1:])
	return fmt.Sprintf(
		"%s\n%s %s (SQLite %s)",
		art, tool, Version, sqlitec.LibVersion(),
	)
}

// ShellVersion returns the banner of the interactive shell.
func ShellVersion() string {
	return Banner("Shell")
}

// BenchVersion returns the banner of the benchmark tool.
func BenchVersion() string {
	return Banner("Bench")
}
