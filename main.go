// Command vocabquiz is a vocabulary flashcard quiz for the terminal and Telegram.
package main

import (
	"os"

	"github.com/example/vocabquiz/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
