// Command seed imports patients and medications from a YAML file.
//
//	seed -file internal/seed/testdata/seed.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-med-robot/internal/app"
	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	"github.com/tbourn/go-med-robot/internal/seed"
	"github.com/tbourn/go-med-robot/internal/services"
	"github.com/tbourn/go-med-robot/internal/sysutil"
)

func main() {
	file := flag.String("file", "", "path to the YAML seed file (required)")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "seed: -file is required")
		flag.Usage()
		os.Exit(2)
	}

	config.LoadDotEnv(*envFile)
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)

	doc, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("load seed file")
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer func() { _ = app.CloseDB(db) }()

	im := &seed.Importer{
		Patients:    &services.PatientService{DB: db},
		Medications: &services.MedicationService{DB: db, Clock: clock.System{}},
	}
	res, err := im.Apply(context.Background(), doc)
	log.Info().Int("patients", res.Patients).Int("medications", res.Medications).Msg("seed applied")
	if err != nil {
		log.Error().Err(err).Msg("seed stopped")
		_ = app.CloseDB(db)
		os.Exit(1)
	}
}
