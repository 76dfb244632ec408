package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

// Prints a fresh 256-bit HMAC secret for the JWT_SECRET environment
// variable. Run once per environment and store the value in .env or Vault.
func main() {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read random bytes: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generated HS256 signing secret.")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", base64.StdEncoding.EncodeToString(secret))
}
