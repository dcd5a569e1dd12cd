package main

import (
	"os"

	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/logging"
)

const usage = "usage: lutgen generate <project.json> [out-file] | default <name> [out-file] | drivers"

func main() {
	log, err := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"), "text")
	if err != nil {
		log, _ = logging.New(os.Stderr, "", "text")
	}

	if len(os.Args) < 2 {
		log.Fatal().Msg(usage)
	}

	registry := drivers.NewRegistry()
	if path := os.Getenv("DRIVERS_FILE"); path != "" {
		if _, err := registry.LoadYAML(path); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("load drivers")
		}
	}

	switch os.Args[1] {
	case "generate":
		err = runGenerate(registry, os.Args[2:])
	case "default":
		err = runDefault(registry, os.Args[2:])
	case "drivers":
		err = runDrivers(registry, os.Stdout)
	default:
		log.Fatal().Msgf("unknown command: %s\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(os.Args[1])
	}
}
