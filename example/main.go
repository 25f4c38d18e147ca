package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/oligo/autopair"
	"github.com/oligo/autopair/config"
	"github.com/oligo/autopair/editor"
)

// session types every line read from stdin into an editor and prints the
// result, with the caret shown as '|'. A line starting with ':' is a
// command.
type session struct {
	state *editor.Editor
	out   *bufio.Writer
}

func (s *session) handle(line string) {
	switch {
	case line == ":undo":
		s.state.Undo()
	case line == ":redo":
		s.state.Redo()
	case line == ":bs":
		s.state.Delete(-1)
	case line == ":reset":
		s.state.SetText("")
	case strings.HasPrefix(line, ":sel "):
		var start, end int
		if _, err := fmt.Sscanf(line, ":sel %d %d", &start, &end); err != nil {
			log.Println("usage: :sel <start> <end>")
			return
		}
		s.state.SetCaret(start, end)
	default:
		s.state.TypeText(line)
	}

	s.print()
}

func (s *session) print() {
	text := []rune(s.state.Text())
	start, end := s.state.Selection()
	from, to := min(start, end), max(start, end)

	var b strings.Builder
	b.WriteString(string(text[:from]))
	b.WriteRune('|')
	if from != to {
		b.WriteString(string(text[from:to]))
		b.WriteRune('|')
	}
	b.WriteString(string(text[to:]))

	fmt.Fprintf(s.out, "%s  pairs=%v\n", b.String(), s.state.Pairs())
	s.out.Flush()
}

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)

	configPath := flag.String("config", "", "TOML or YAML delimiter table, reloaded on change")
	initial := flag.String("text", "", "initial text")
	debug := flag.Bool("debug", false, "log tracker decisions")
	flag.Parse()

	if *debug {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		autopair.SetLogger(slog.New(h))
		config.SetLogger(slog.New(h))
	}

	var opts []autopair.Option
	tables := make(chan autopair.Table, 1)

	if *configPath != "" {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()

		opts, err = w.Config().Options()
		if err != nil {
			log.Fatal(err)
		}

		w.OnChange(func(cfg *config.Config) {
			table, err := cfg.Table()
			if err != nil {
				log.Println(err)
				return
			}
			// Keep only the latest table.
			select {
			case <-tables:
			default:
			}
			tables <- table
		})

		go func() {
			for err := range w.Errors() {
				log.Println(err)
			}
		}()
	}

	s := &session{
		state: editor.New(opts...),
		out:   bufio.NewWriter(os.Stdout),
	}
	s.state.SetText(*initial)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case table := <-tables:
			s.state.SetTable(table)
			log.Printf("delimiter table reloaded, %d pairs", table.Len())
		case line, ok := <-lines:
			if !ok {
				return
			}
			s.handle(line)
		}
	}
}
