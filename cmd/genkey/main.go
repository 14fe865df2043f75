package main

import (
	"fmt"
	"os"

	"github.com/crewforge/checkpoint/internal/domain"
)

func main() {
	env := domain.EnvLive

	if len(os.Args) > 1 && os.Args[1] == "test" {
		env = domain.EnvTest
	}

	key, hash, prefix, err := domain.GenerateAPIKey(env)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("KEY=%s\nHASH=%s\nPREFIX=%s\n", key, hash, prefix)
}
