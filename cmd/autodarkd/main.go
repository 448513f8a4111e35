/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package main

import (
	"os"

	_ "time/tzdata"

	"github.com/ardikabs/autodark/cmd/autodarkd/app"
)

func main() {
	opts := app.ParseFlags()
	if err := app.Run(opts); err != nil {
		os.Exit(1)
	}
}
