// Command scrabbled runs the Scrabble game server: the WebSocket
// endpoint, the read-only admin HTTP surface, and an operator console
// on stdin for creating, starting, and loading games.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"scrabbled/internal/adminhttp"
	"scrabbled/internal/config"
	"scrabbled/internal/engine"
	"scrabbled/internal/obslog"
	"scrabbled/internal/store"
	"scrabbled/internal/transport"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := obslog.New(os.Stderr, slog.LevelInfo)

	st, err := store.New(cfg.StoreDir)
	if err != nil {
		logger.Error("open event store failed", "error", err)
		os.Exit(1)
	}

	eng := engine.New(st, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", transport.NewHandler(eng, logger))
	mux.Handle("/", adminhttp.NewHandler(eng, logger))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("listening", "addr", addr, "store_dir", cfg.StoreDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
	}()

	cmds := make(chan []string, 32)
	go readConsoleCommands(os.Stdin, cmds)
	runOperatorConsole(eng, cmds)
}

// readConsoleCommands is the stdin line reader: it runs on its own
// goroutine, splitting each line into fields and posting them onto cmds
// for the console loop to drain. Closing cmds on EOF lets
// runOperatorConsole fall through and return.
func readConsoleCommands(r io.Reader, cmds chan<- []string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmds <- strings.Fields(line)
	}
	close(cmds)
}

// runOperatorConsole drains parsed commands from cmds until "q" or the
// channel closes (stdin EOF). It is the single goroutine posted-to
// commands are processed on, so no further coordination is needed to
// serialize operator commands against each other.
func runOperatorConsole(eng *engine.Engine, cmds <-chan []string) {
	for fields := range cmds {
		switch fields[0] {
		case "new":
			id := eng.InitNewGame()
			fmt.Printf("created game %d\n", id)

		case "start":
			if len(fields) < 3 {
				fmt.Println("usage: start <id> <init_word>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("invalid game id:", fields[1])
				continue
			}
			if err := eng.StartGame(id, fields[2]); err != nil {
				fmt.Println("start failed:", err)
				continue
			}
			fmt.Printf("started game %d\n", id)

		case "load":
			if len(fields) < 2 {
				loaded, err := eng.LoadAllGames()
				if err != nil {
					fmt.Println("load failed:", err)
					continue
				}
				fmt.Printf("loaded %d game(s): %v\n", len(loaded), loaded)
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("invalid game id:", fields[1])
				continue
			}
			if err := eng.LoadGame(id); err != nil {
				fmt.Println("load failed:", err)
				continue
			}
			fmt.Printf("loaded game %d\n", id)

		case "disconnect":
			if len(fields) < 3 {
				fmt.Println("usage: disconnect <id> <player>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("invalid game id:", fields[1])
				continue
			}
			if err := eng.Disconnect(fields[2], id); err != nil {
				fmt.Println("disconnect failed:", err)
				continue
			}
			fmt.Printf("disconnected %s from game %d\n", fields[2], id)

		case "q":
			return

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
