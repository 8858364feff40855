package main

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/session"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/setting"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/transcription"
)

const minArgs = 2

const devURL = "docker://postgres/16-alpine/dev?search_path=public"

func main() {
	if len(os.Args) < minArgs {
		log.Fatal("please provide a migration name")
	}

	migrationName := filepath.Base(os.Args[1])

	schema, err := gormschema.New("postgres").Load(
		&call.Call{},
		&session.Session{},
		&transcription.Transcription{},
		&setting.Setting{},
	)
	if err != nil {
		log.Fatalf("failed to load gorm schema: %v", err)
	}

	tmp, err := os.CreateTemp("", "schema-*.sql")
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		err := os.Remove(tmp.Name())
		if err != nil {
			log.Printf("failed to remove temp file %s: %v", tmp.Name(), err)
		}
	}()

	_, err = tmp.WriteString(schema)
	if err != nil {
		log.Fatal(err)
	}

	err = tmp.Close()
	if err != nil {
		log.Printf("failed to close temp file: %v", err)
	}

	cmd := exec.Command(
		"atlas",
		"migrate", "diff",
		migrationName,
		"--to", "file://"+tmp.Name(),
		"--dev-url", devURL,
		"--dir", "file://migrations?format=golang-migrate",
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Fatalf("atlas diff failed: %v\n%s", err, out)
	}

	log.Printf("migration generated successfully:\n%s", out)
}
