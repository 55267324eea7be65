package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vjkit/stagectl/internal/config"
	"github.com/vjkit/stagectl/internal/engine"
	"github.com/vjkit/stagectl/internal/mapping"
	"github.com/vjkit/stagectl/internal/midisession"
	"github.com/vjkit/stagectl/internal/stage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open the mapping store (corrupt or missing files load empty)
	mappingPath, err := mapping.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to resolve mapping path: %v", err)
	}
	mappings := mapping.Open(mappingPath)

	store := stage.NewStore(cfg.Regions)
	eng := engine.New(cfg, store, mappings, engine.Hooks{
		TriggerAction: func(name string) {
			log.Printf("action: %s", name)
		},
		TriggerRegion: func(index int, name string) {
			log.Printf("region %d: %s", index+1, name)
		},
	})

	// Attach the MIDI input port
	session := midisession.NewSession()
	defer session.Close()
	if cfg.MIDIPort != "" {
		if err := session.Start(cfg.MIDIPort, eng.Dispatch, func(msg string) {
			log.Printf("midi: %s", msg)
		}); err != nil {
			// Not fatal: the engine runs without input, timers still fire.
			log.Printf("midi: %v", err)
		}
	} else {
		log.Printf("no midi_port configured; available ports: %v", midisession.ListInPorts())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("stagectl running with %d regions", cfg.Regions)
	eng.Run(ctx)
}
