package main

import (
	"fmt"
	"os"

	"github.com/zurustar/musicdec/pkg/app"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // MIDI output ports for --play
)

func main() {
	application := app.New()
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
