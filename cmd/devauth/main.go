// Command devauth runs a local development backend that speaks the escrow
// dashboard's auth and escrow API.
package main

//go:generate swag init -g internal/devauth/http/router.go -d ../../ -o ../../api/devauth --ot go --packageName devauth

import (
	"log"

	"github.com/safescrow/dashboard/internal/devauth/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
