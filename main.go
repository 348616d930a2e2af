package main

import "github.com/rasnes/inegi-duckdb-framework/cmd"

func main() {
	cmd.Execute()
}
