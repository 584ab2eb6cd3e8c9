package main

import "github.com/matthieukhl/reword/internal/cmd"

func main() {
	cmd.Execute()
}
