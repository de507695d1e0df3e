package main

import "os"

func main() {
	if err := newRootCmd(newEnvironment()).Execute(); err != nil {
		os.Exit(1)
	}
}
