package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	_ = godotenv.Load()

	a := &app{
		out:          os.Stdout,
		readPassword: term.ReadPassword,
	}
	a.connect = a.connectDB
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}
