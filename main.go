package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nutrinode/analysis"
	"nutrinode/gemini"
	"nutrinode/history"
	"nutrinode/log"
	"nutrinode/playback"
)

var version = "dev"

func main() {
	dietFlag := flag.String("diet", "Standard", "Dietary lens: Standard, Vegan, Keto, Gluten-Free, Low-FODMAP, or Paleo")
	setupFlag := flag.Bool("setup", false, "Select audio output device (otherwise uses system default)")
	muteFlag := flag.Bool("mute", false, "Disable spoken verdicts")
	dbFlag := flag.String("db", "", "History database path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("nutrinode %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	diet, ok := analysis.ParseProfile(*dietFlag)
	if !ok {
		fmt.Printf("Error: unknown diet %q (use Standard, Vegan, Keto, Gluten-Free, Low-FODMAP, or Paleo)\n", *dietFlag)
		os.Exit(1)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		// Requests will surface the missing key per attempt; the user can
		// still browse history.
		fmt.Fprintln(os.Stderr, "Warning: GEMINI_API_KEY is not set; analyses will fail until it is")
	}
	client := gemini.NewClient(apiKey)
	go client.Warm()

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = history.DefaultPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		log.Errorf("history store: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	var player playback.Player
	if *muteFlag {
		player = playback.NewFakePlayer()
	} else {
		player, err = playback.New()
		if err != nil {
			log.Warnf("audio init: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: audio unavailable: %v\n", err)
			player = playback.NewFakePlayer()
			*muteFlag = true
		}
	}
	defer player.Close()

	if *setupFlag && !*muteFlag {
		dev, err := playback.SelectDevice(player)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		} else {
			player.SetDevice(dev)
		}
	}

	log.SessionStart(string(diet))

	m := newModel(client, store, player, diet, *muteFlag)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if fm, ok := final.(model); ok {
		log.SessionEnd(len(fm.entries))
	}
}
