package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	sessiondto "vocabhub/internal/modules/session/dto"
)

// console reads one answer per line. ":s" toggles the saved flag and ":p"
// pronounces the word without consuming the prompt.
type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

var errQuit = errors.New("quit")

type sideActions interface {
	ToggleSaved(ctx context.Context) error
	Pronounce(ctx context.Context) error
	View() sessiondto.View
}

func (c *console) ask(ctx context.Context, host sideActions, prompt string) (string, error) {
	for {
		_, _ = fmt.Fprint(c.out, prompt)
		if !c.in.Scan() {
			return "", errQuit
		}
		line := strings.TrimSpace(c.in.Text())
		switch line {
		case "q", ":q":
			return "", errQuit
		case ":s":
			if err := host.ToggleSaved(ctx); err != nil {
				c.println("could not update saved words:", err)
			} else if item := host.View().Item; item != nil && item.Saved {
				c.println("saved")
			} else if item != nil {
				c.println("removed from saved")
			}
			continue
		case ":p":
			if err := host.Pronounce(ctx); err != nil {
				c.println("could not pronounce:", err)
			}
			continue
		}
		return line, nil
	}
}

func (c *console) println(args ...any) {
	_, _ = fmt.Fprintln(c.out, args...)
}

type watchable interface {
	View() sessiondto.View
	Subscribe(fn func(sessiondto.View)) (unsubscribe func())
}

// waitFor blocks until ok holds for the host view or ctx ends.
func waitFor(ctx context.Context, host watchable, ok func(sessiondto.View) bool) sessiondto.View {
	changed := make(chan struct{}, 1)
	unsubscribe := host.Subscribe(func(sessiondto.View) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()
	for {
		v := host.View()
		if ok(v) {
			return v
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return host.View()
		}
	}
}

func settled(v sessiondto.View) bool { return v.Status != "loading" }

type studyHost interface {
	sideActions
	watchable
	Reveal()
	Answer(ctx context.Context, known bool) error
	Check(ctx context.Context, input string) error
	Abandon(ctx context.Context) error
}

func runStudy(ctx context.Context, host studyHost, c *console) error {
	for {
		v := waitFor(ctx, host, settled)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if v.Item == nil {
			return finish(c, v)
		}
		item := v.Item
		c.println()
		c.println(fmt.Sprintf("[%d/%d] %s", v.Cursor+1, v.Total, item.Prompt))

		var err error
		switch v.Mode {
		case "spelling":
			err = studySpelling(ctx, host, c, item.ID)
		default:
			err = studyReveal(ctx, host, c)
		}
		if errors.Is(err, errQuit) {
			return abandon(ctx, host, c)
		}
		if err != nil {
			// The item stays current; ask again.
			c.println("not recorded:", err)
		}
	}
}

func studyReveal(ctx context.Context, host studyHost, c *console) error {
	if _, err := c.ask(ctx, host, "enter to reveal: "); err != nil {
		return err
	}
	host.Reveal()
	if item := host.View().Item; item != nil {
		c.println("  " + item.Answer)
		if item.Example != "" {
			c.println("  “" + item.Example + "”")
		}
	}
	for {
		line, err := c.ask(ctx, host, "knew it? [y/n]: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return host.Answer(ctx, true)
		case "n", "no":
			return host.Answer(ctx, false)
		}
	}
}

func studySpelling(ctx context.Context, host studyHost, c *console, itemID string) error {
	line, err := c.ask(ctx, host, "spell it: ")
	if err != nil {
		return err
	}
	if err := host.Check(ctx, line); err != nil {
		return err
	}
	if fb := host.View().Feedback; fb != nil {
		if fb.Correct {
			c.println("  correct")
		} else {
			c.println("  expected: " + fb.Expected)
		}
	}
	// Feedback stays on screen until the host advances on its own.
	waitFor(ctx, host, func(v sessiondto.View) bool {
		return v.Item == nil || v.Item.ID != itemID || v.Phase == "answering"
	})
	return nil
}

type assessmentHost interface {
	sideActions
	watchable
	Answer(ctx context.Context, recognized bool) error
	Next()
	Abandon(ctx context.Context) error
}

func runAssessment(ctx context.Context, host assessmentHost, c *console) error {
	for {
		v := waitFor(ctx, host, settled)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if v.Item == nil {
			return finish(c, v)
		}
		c.println()
		c.println(fmt.Sprintf("[%d/%d] %s", v.Cursor+1, v.Total, v.Item.Prompt))

		line, err := c.ask(ctx, host, "do you know it? [y/n]: ")
		if errors.Is(err, errQuit) {
			return abandon(ctx, host, c)
		}
		var recognized bool
		switch strings.ToLower(line) {
		case "y", "yes":
			recognized = true
		case "n", "no":
		default:
			continue
		}
		if err := host.Answer(ctx, recognized); err != nil {
			c.println("not recorded:", err)
			continue
		}
		if item := host.View().Item; item != nil {
			c.println("  " + item.Answer)
			for _, ex := range item.Examples {
				c.println("  • " + ex)
			}
		}
		if _, err := c.ask(ctx, host, "enter for next: "); errors.Is(err, errQuit) {
			host.Next()
			return abandon(ctx, host, c)
		}
		host.Next()
	}
}

type abandoner interface {
	Abandon(ctx context.Context) error
	View() sessiondto.View
}

func abandon(ctx context.Context, host abandoner, c *console) error {
	if host.View().Status != "active" {
		return finish(c, host.View())
	}
	if err := host.Abandon(ctx); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return finish(c, host.View())
}

func finish(c *console, v sessiondto.View) error {
	c.println()
	c.println(v.Title)
	if v.Result != nil {
		c.println(fmt.Sprintf("Estimated vocabulary: ~%d words (recognised %d of %d)",
			v.Result.EstimatedVocabulary, v.Result.Recognized, v.Result.Total))
	} else if v.Copy != "" {
		c.println(v.Copy)
	}
	if v.Status == "failed" {
		return errors.New(v.Diagnostic)
	}
	return nil
}
