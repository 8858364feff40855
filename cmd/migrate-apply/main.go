package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const validArgsLen = 2

func main() {
	if len(os.Args) < validArgsLen {
		log.Fatal("usage: up | down [steps]")
	}

	migrationsDir, err := filepath.Abs("migrations")
	if err != nil {
		log.Fatal(err)
	}

	migrator, err := migrate.New("file://"+filepath.ToSlash(migrationsDir), database.GetURL())
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil || dbErr != nil {
			log.Printf("failed to close migrator: source=%v db=%v", sourceErr, dbErr)
		}
	}()

	steps := 1
	if len(os.Args) > validArgsLen {
		steps, err = strconv.Atoi(os.Args[2])
		if err != nil || steps < 1 {
			log.Fatal("steps must be a positive number")
		}
	}

	switch os.Args[1] {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Steps(-steps)
	default:
		log.Fatal("unknown command")
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	version, dirty, _ := migrator.Version()
	log.Printf("migration complete. version=%d dirty=%v", version, dirty)
}
