// Terminal progress line for a running job
package progress

import (
	"context"
	"fmt"
	"gzzip/internal/global"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Creates new renderer writing to out.
// Redraws in place only when out is a terminal; otherwise only the final line is printed.
func New(namespace []string, source Source, out *os.File, period time.Duration) (new *Renderer) {
	if out == nil {
		out = os.Stdout
	}
	new = newRenderer(namespace, source, out, period)
	new.interactive = term.IsTerminal(int(out.Fd()))
	return
}

func newRenderer(namespace []string, source Source, out io.Writer, period time.Duration) (new *Renderer) {
	if period <= 0 {
		period = global.DefaultProgressPeriod
	}
	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &Renderer{
		Namespace: append(ns, global.NSProgress),
		source:    source,
		out:       out,
		period:    period,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	return
}

// Begins redrawing every period until Stop or ctx is done
func (renderer *Renderer) Start(ctx context.Context) {
	if !renderer.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(renderer.done)

		ticker := time.NewTicker(renderer.period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-renderer.stopCh:
				return
			case <-ticker.C:
				if renderer.interactive {
					fmt.Fprintf(renderer.out, "\r%s", renderer.line())
				}
			}
		}
	}()
}

// Stops redrawing and prints the final line
func (renderer *Renderer) Stop() {
	renderer.stopOnce.Do(func() {
		close(renderer.stopCh)
		if renderer.started.Load() {
			<-renderer.done
		}

		if renderer.interactive {
			fmt.Fprintf(renderer.out, "\r%s\n", renderer.line())
		} else {
			fmt.Fprintf(renderer.out, "%s\n", renderer.line())
		}
	})
}

func (renderer *Renderer) line() (text string) {
	read, transformed, written, total := renderer.source.Percent()
	text = formatLine(read, transformed, written, total)
	return
}

func formatLine(read, transformed, written, total float64) (text string) {
	text = fmt.Sprintf("Read: %6.2f%% | Transformed: %6.2f%% | Written: %6.2f%% | Total: %6.2f%%",
		read, transformed, written, total)
	return
}
