package main

import (
	"github.com/joho/godotenv"

	"daily-worklog/cmd"
)

func main() {
	// Local overrides live in .env; absence is fine.
	godotenv.Load()

	cmd.Execute()
}
