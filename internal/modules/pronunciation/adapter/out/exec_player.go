package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"

	pronunciationout "vocabhub/internal/modules/pronunciation/port/out"
	"vocabhub/internal/platform/httpx"
)

// playerCommands lists audio players in order of preference with the
// arguments that make them play once without a window.
var playerCommands = [][]string{
	{"mpv", "--no-video", "--really-quiet"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"afplay"},
	{"paplay"},
}

// ExecPlayer downloads an asset to a temp file and plays it with the first
// player found on PATH.
type ExecPlayer struct {
	client   *httpx.Client
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewExecPlayer(client *httpx.Client) pronunciationout.Player {
	return &ExecPlayer{client: client, lookPath: exec.LookPath, run: runCommand}
}

func (p *ExecPlayer) Play(ctx context.Context, assetURL string) error {
	argv, err := p.command()
	if err != nil {
		return err
	}
	f, err := os.CreateTemp("", "vocabhub-*"+path.Ext(assetURL))
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())
	dlErr := p.client.Download(ctx, "pronunciation.download", assetURL, f)
	if cerr := f.Close(); dlErr == nil && cerr != nil {
		dlErr = cerr
	}
	if dlErr != nil {
		return dlErr
	}
	args := append(append([]string{}, argv[1:]...), f.Name())
	if err := p.run(ctx, argv[0], args...); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

func (p *ExecPlayer) command() ([]string, error) {
	for _, cmd := range playerCommands {
		if bin, err := p.lookPath(cmd[0]); err == nil {
			return append([]string{bin}, cmd[1:]...), nil
		}
	}
	return nil, errors.New("no audio player found on PATH")
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
