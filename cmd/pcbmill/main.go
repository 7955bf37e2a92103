package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	log.SetFlags(log.Lshortfile)

	opts, err := loadOptions(newFlagSet(), os.Args[1:])
	if err == pflag.ErrHelp {
		return
	}
	if err != nil {
		log.Println("ERROR:", err)
		os.Exit(2)
	}

	err = run(opts)
	if err != nil {
		log.Printf("ERROR: %+v", err)
		os.Exit(exitCode(err))
	}
}
