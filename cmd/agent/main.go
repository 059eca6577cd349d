package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rikonaka/watchdog/internal/pkg/agent"
	"github.com/rikonaka/watchdog/internal/pkg/log"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"
)

func main() {
	var (
		logOutput  string
		logFormat  string
		logLevel   string
		serverAddr string
		serverType string
		secret     string
		interval   time.Duration
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "fleet watchdog push agent.")
	app.HelpFlag.Short('h')
	app.Flag("log.level", "Log level, one of [debug, info, warn, error].").Default("info").EnumVar(&logLevel, "debug", "info", "warn", "error")
	app.Flag("log.output", "Log output, one of [stdout, stderr].").Default("stderr").EnumVar(&logOutput, "stdout", "stderr")
	app.Flag("log.format", "Log format, one of [json, text].").Default("text").EnumVar(&logFormat, "json", "text")
	app.Flag("server.addr", "Collector update endpoint.").Default("http://127.0.0.1:7070/update").StringVar(&serverAddr)
	app.Flag("server.type", "Machine kind, one of [gpu, cpu]; cpu skips the nvidia-smi probe.").Default("gpu").EnumVar(&serverType, "gpu", "cpu")
	app.Flag("auth.secret", "Shared password carried in every payload.").Envar("WATCHDOG_SECRET").Required().StringVar(&secret)
	app.Flag("interval", "Delay between status pushes.").Default("60s").DurationVar(&interval)
	app.Version(version.Print("watchdog-agent"))

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("failed to parse commandline arguments: %w", err))
		app.Usage(os.Args[1:])
		os.Exit(2)
	}
	logger, logClose, err := log.NewLogger(logOutput, logFormat, "", logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logClose()

	client := &http.Client{Timeout: 30 * time.Second}
	withGPU := serverType == "gpu"
	logger.Info("agent started", slog.String("server", serverAddr), slog.Duration("interval", interval))
	for {
		if err := pushOnce(client, serverAddr, secret, withGPU); err != nil {
			logger.Error("push failed", slog.Any("err", err))
		}
		time.Sleep(interval)
	}
}

func pushOnce(client *http.Client, serverAddr, secret string, withGPU bool) error {
	m, err := agent.Collect(time.Now(), withGPU)
	if err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}
	req, err := agent.BuildUpdate(secret, m)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	resp, err := client.Post(serverAddr, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collector answered %s", resp.Status)
	}
	return nil
}
