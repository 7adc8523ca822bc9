package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/autoschedule-api/pkg/auth"
	"github.com/arnavshah/autoschedule-api/pkg/config"
)

func main() {
	// Load .env from project root
	config.LoadEnvFiles(".env", "../.env", "../../.env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <clientID>")
		os.Exit(1)
	}

	clientID := os.Args[1]
	secret := os.Getenv("ACCESS_TOKEN")
	if secret == "" {
		fmt.Println("Error: ACCESS_TOKEN not found in environment or .env")
		os.Exit(1)
	}

	key := auth.GenerateHMACKey(secret, clientID)
	fmt.Printf("Generated Key for %s:\n%s\n", clientID, key)
}
