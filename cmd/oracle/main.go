package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/marataitester-blip/psy-color/internal/client"
	"github.com/marataitester-blip/psy-color/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "http://localhost:8080", "oracle server base URL")
	langFlag := flag.String("lang", "ru", "language of the reading (en or ru)")
	staged := flag.Bool("staged", false, "call the text and image steps separately")
	saveDir := flag.String("save", "", "directory to write card images to")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-reading timeout")
	flag.Parse()

	lang, err := domain.ParseLanguage(*langFlag, domain.Russian)
	if err != nil {
		return err
	}

	rl, err := readline.New(prompt(lang))
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	out := rl.Stdout()
	var sub *client.Submitter
	sub = client.NewSubmitter(
		client.NewClient(&http.Client{}, *server),
		lang,
		client.SubmitterOptions{
			Staged: *staged,
			OnChange: func(v client.View) {
				if label := client.StatusLabel(v.Language, v.Status); label != "" {
					fmt.Fprintln(out, label)
				}
			},
			Revealer: client.RevealFunc(func(res domain.FullAnalysisResult) {
				printReading(out, sub.View().Language, res, *saveDir)
			}),
		},
	)

	fmt.Fprintln(out, "Describe what troubles you. Commands: :lang, :clear, :quit")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		line = strings.TrimSpace(line)

		switch line {
		case ":quit", ":q":
			return nil
		case ":clear":
			sub.Clear()
			continue
		case ":lang":
			lang = sub.ToggleLanguage()
			rl.SetPrompt(prompt(lang))
			continue
		}

		// A finished reading is cleared by asking a new question.
		if line != "" && sub.View().Status == client.Complete {
			sub.Clear()
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		_, err = sub.Submit(ctx, line)
		cancel()
		if err != nil {
			fmt.Fprintln(out, "!", err)
		}
	}
}

func printReading(out io.Writer, lang domain.Language, res domain.FullAnalysisResult, saveDir string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, client.CardTitle(lang, res.CardName))
	fmt.Fprintln(out, client.RevelationLabel(lang)+":")
	fmt.Fprintln(out, res.Interpretation)
	switch {
	case saveDir != "":
		if path, err := saveImage(saveDir, res.ImageURL); err != nil {
			fmt.Fprintln(out, "!", err)
		} else {
			fmt.Fprintln(out, "image:", path)
		}
	case !strings.HasPrefix(res.ImageURL, "data:"):
		fmt.Fprintln(out, "image:", res.ImageURL)
	}
	fmt.Fprintln(out)
}

func prompt(lang domain.Language) string {
	return fmt.Sprintf("[%s] > ", strings.ToUpper(string(lang)))
}

func saveImage(dir, dataURI string) (string, error) {
	_, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok {
		return "", fmt.Errorf("image is not inline: %s", dataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("card-%d.png", time.Now().Unix()))
	return path, os.WriteFile(path, data, 0o644)
}
