package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	verdictFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

// RequestTimings carries per-request network timings in milliseconds.
type RequestTimings struct {
	DNS        float64
	TLS        float64
	TTFB       float64
	Total      float64
	ConnReused bool
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: NUTRINODE_LOG_PATH environment variable
	envPath := os.Getenv("NUTRINODE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	verdictPath := filepath.Join(dir, "verdict_log.txt")
	verdictFile, err = os.OpenFile(verdictPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if verdictFile != nil {
		verdictFile.Close()
		verdictFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func RequestMetrics(model string, t RequestTimings) {
	if !logReady {
		return
	}

	connStatus := "new"
	if t.ConnReused {
		connStatus = "reused"
	}

	diagLog.Info().
		Str("model", model).
		Str("conn", connStatus).
		Float64("dns_ms", t.DNS).
		Float64("tls_ms", t.TLS).
		Float64("ttfb_ms", t.TTFB).
		Float64("total_ms", t.Total).
		Msg("request")
}

// Analysis records the outcome of one completed analysis.
func Analysis(profile string, score int, verdict string, ingredients int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("profile", profile).
		Int("score", score).
		Str("verdict", verdict).
		Int("ingredients", ingredients).
		Msg("analysis")
}

// VerdictText appends the human-readable verdict line to the verdict log.
func VerdictText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	verdictFile.WriteString(line)
}

func SessionStart(profile string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("profile", profile).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
