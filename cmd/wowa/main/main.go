package main

import (
	"os"

	"github.com/arthur-debert/wowa/cmd/wowa"
)

func main() {
	os.Exit(wowa.Execute())
}
