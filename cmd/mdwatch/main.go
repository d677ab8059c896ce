// mdwatch converts Markdown files to HTML whenever they are saved.
package main

import (
	"os"

	"github.com/hupe1980/mdwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
