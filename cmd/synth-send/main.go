// synth-send publica linhas de comando para uma sessão synthctl rodando
// com nats.remote_input ligado.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	eventadapter "github.com/diogoX451/synthctl/internal/adapters/events"
	natsevents "github.com/diogoX451/synthctl/internal/events/nats"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/diogoX451/synthctl/pkg/types"
)

func main() {
	url := flag.String("nats", types.Getenv("SYNTH_NATS_URL", "nats://localhost:4222"), "NATS server URL")
	prefix := flag.String("prefix", types.Getenv("SYNTH_NATS_SUBJECT_PREFIX", "synth"), "subject prefix")
	session := flag.StringP("session", "s", os.Getenv("SYNTH_APP_SESSION_ID"), "target session id")
	origin := flag.String("origin", "synth-send", "origin recorded with each line")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: synth-send -s SESSION [command...]\n")
		fmt.Fprintf(os.Stderr, "without a command, lines are read from stdin\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logging.Default()
	if *session == "" {
		flag.Usage()
		os.Exit(2)
	}

	natsBus, err := natsevents.New(natsevents.Config{
		URL:           *url,
		MaxReconnects: 3,
		Name:          "synth-send",
	})
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	if err := natsBus.SetupSynthStreams(*prefix); err != nil {
		natsBus.Close()
		log.Fatalf("failed to setup streams: %v", err)
	}
	bus := eventadapter.NewEventBus(natsBus, *prefix)
	defer bus.Close()

	id := types.SessionID(*session)
	send := func(line string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return bus.PublishInput(ctx, id, types.RemoteLine{Line: line, Origin: *origin})
	}

	if flag.NArg() > 0 {
		if err := send(strings.Join(flag.Args(), " ")); err != nil {
			log.Errorf("publish: %v", err)
			os.Exit(1)
		}
		return
	}

	sc := bufio.NewScanner(os.Stdin)
	n := 0
	for sc.Scan() {
		if err := send(sc.Text()); err != nil {
			log.Errorf("publish: %v", err)
			os.Exit(1)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		log.Errorf("read stdin: %v", err)
		os.Exit(1)
	}
	log.Infof("published %d lines session=%s", n, id)
}
