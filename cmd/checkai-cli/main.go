// Package main is an interactive terminal client for the CheckAI
// server, one command per line with readline history.
package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"checkai/internal/client"
)

const helpText = `Commands:
  new                               create a game
  list                              list games
  show <id>                         full game view
  board <id>                        ASCII board
  moves <id>                        legal moves
  move <id> <from> <to> [QRBN]      play a move
  action <id> <type> [reason]       resign | offer_draw | accept_draw | claim_draw
  delete <id>                       delete (archives finished games)
  archive                           list archived games
  stats                             archive stats
  replay <id> [n]                   replay archived game up to halfmove n
  export <id> [pgn|text|json]       export archived game
  help                              this text
  quit                              exit`

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "CheckAI server base URL")
	flag.Parse()

	c := client.New(*serverURL)

	rl, err := readline.New("checkai> ")
	if err != nil {
		fmt.Println("failed to start readline:", err)
		return
	}
	defer rl.Close()

	fmt.Println("CheckAI client. Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if out, err := run(c, fields); err != nil {
			fmt.Println("error:", err)
		} else if out != "" {
			fmt.Println(out)
		}
	}
}

func run(c *client.Client, fields []string) (string, error) {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		return helpText, nil

	case "new":
		body, err := c.CreateGame()
		return client.Pretty(body), err

	case "list":
		body, err := c.ListGames()
		return client.Pretty(body), err

	case "show":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: show <id>")
		}
		body, err := c.GetGame(args[0])
		return client.Pretty(body), err

	case "board":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: board <id>")
		}
		return c.Board(args[0])

	case "moves":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: moves <id>")
		}
		body, err := c.LegalMoves(args[0])
		return client.Pretty(body), err

	case "move":
		if len(args) < 3 {
			return "", fmt.Errorf("usage: move <id> <from> <to> [QRBN]")
		}
		var promotion *string
		if len(args) > 3 {
			p := strings.ToUpper(args[3])
			promotion = &p
		}
		body, err := c.SubmitMove(args[0], args[1], args[2], promotion)
		return client.Pretty(body), err

	case "action":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: action <id> <type> [reason]")
		}
		reason := ""
		if len(args) > 2 {
			reason = args[2]
		}
		body, err := c.SubmitAction(args[0], args[1], reason)
		return client.Pretty(body), err

	case "delete":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: delete <id>")
		}
		body, err := c.DeleteGame(args[0])
		return client.Pretty(body), err

	case "archive":
		body, err := c.ArchiveList()
		return client.Pretty(body), err

	case "stats":
		body, err := c.ArchiveStats()
		return client.Pretty(body), err

	case "replay":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: replay <id> [n]")
		}
		move := -1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return "", fmt.Errorf("invalid halfmove count: %q", args[1])
			}
			move = n
		}
		body, err := c.ArchiveReplay(args[0], move)
		return client.Pretty(body), err

	case "export":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: export <id> [pgn|text|json]")
		}
		format := "pgn"
		if len(args) > 1 {
			format = args[1]
		}
		return c.ArchiveExport(args[0], format)

	default:
		return "", fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}
