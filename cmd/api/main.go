package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newApp().Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
