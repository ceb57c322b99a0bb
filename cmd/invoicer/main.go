package main

import (
	"log"

	"github.com/joho/godotenv"

	"invoice-import-backend/internal/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cli.Execute()
}
