// Command quill-edit autosaves a markdown file as a quill draft while you
// edit it in any editor. The file's first line is the title.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/client"
	"github.com/debemdeboas/quill/internal/lifecycle"
	"github.com/debemdeboas/quill/internal/logger"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/joho/godotenv"
)

const flushTimeout = 10 * time.Second

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func printNotice(n lifecycle.Notice) {
	switch n.Level {
	case lifecycle.LevelSuccess:
		fmt.Println(successStyle.Render("✓ " + n.Message))
	case lifecycle.LevelError:
		fmt.Println(errorStyle.Render("✗ " + n.Message))
	default:
		fmt.Println(infoStyle.Render(n.Message))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("QUILL_SERVER", "http://localhost:12600"), "quill API base URL")
	email := flag.String("email", os.Getenv("QUILL_EMAIL"), "account email")
	file := flag.String("file", "", "markdown file to watch")
	draftID := flag.String("draft", "", "resume an existing draft by id")
	delay := flag.Duration("delay", lifecycle.DefaultDelay, "quiet interval before autosaving")
	poll := flag.Duration("poll", 500*time.Millisecond, "how often to check the file for changes")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(level, logger.FormatConsole)

	if *file == "" || *email == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Both -file and -email are required"))
		os.Exit(2)
	}
	password := os.Getenv("QUILL_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Set QUILL_PASSWORD to log in"))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*server)
	auth, err := api.Login(ctx, *email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Login failed: "+apperr.Message(err, err.Error())))
		os.Exit(1)
	}
	fmt.Println(infoStyle.Render("Logged in as " + auth.User.Name))

	opts := []lifecycle.Option{
		lifecycle.WithDelay(*delay),
		lifecycle.WithNotifier(lifecycle.NotifierFunc(printNotice)),
		lifecycle.WithLogger(logger.Component(log, "lifecycle")),
	}
	if *draftID != "" {
		draft, err := api.GetDraft(ctx, auth.Token, model.DraftID(*draftID))
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Cannot resume draft: "+apperr.Message(err, err.Error())))
			os.Exit(1)
		}
		if _, statErr := os.Stat(*file); os.IsNotExist(statErr) {
			if err := os.WriteFile(*file, formatDocument(draft.Title, draft.Content), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("Cannot write "+*file+": "+err.Error()))
				os.Exit(1)
			}
		}
		opts = append(opts, lifecycle.WithDraft(draft))
	}

	m := lifecycle.NewManager(api, lifecycle.StaticToken(auth.Token), opts...)
	defer m.Close()

	done := make(chan struct{})
	go watch(ctx, m, &fileWatcher{path: *file}, *poll, done)
	go commands(ctx, m, stop)

	<-ctx.Done()
	<-done
	shutdown(m)
}

// watch feeds every change of the file into the manager.
func watch(ctx context.Context, m *lifecycle.Manager, w *fileWatcher, every time.Duration, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		raw, changed, err := w.poll()
		if err != nil {
			fmt.Println(errorStyle.Render("Cannot read " + w.path + ": " + err.Error()))
		} else if changed {
			m.Update(parseDocument(raw))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func commands(ctx context.Context, m *lifecycle.Manager, quit context.CancelFunc) {
	fmt.Println(infoStyle.Render("Commands: save, publish, delete, status, quit"))
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(promptStyle.Render("quill> "))
		if !scanner.Scan() {
			quit()
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "":
		case "save":
			_ = m.Save(ctx)
		case "publish":
			post, err := m.Publish(ctx)
			if err == nil {
				fmt.Println(successStyle.Render("Published as post " + string(post.ID)))
				quit()
				return
			}
		case "delete":
			fmt.Print(warnStyle.Render("Delete this draft? [y/N] "))
			if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
				continue
			}
			if err := m.Delete(ctx); err == nil {
				quit()
				return
			} else if errors.Is(err, lifecycle.ErrSaveInFlight) {
				fmt.Println(warnStyle.Render("A save is in progress, try again"))
			}
		case "status":
			id := string(m.DraftID())
			if id == "" {
				id = "(not saved yet)"
			}
			fmt.Println(infoStyle.Render(fmt.Sprintf("draft %s, %s", id, m.State())))
		case "quit", "exit":
			quit()
			return
		default:
			fmt.Println(warnStyle.Render("Unknown command"))
		}
	}
}

// shutdown gives unsaved edits one last chance.
func shutdown(m *lifecycle.Manager) {
	if !m.Dirty() {
		return
	}
	fmt.Println(warnStyle.Render("You have unsaved changes, saving before exit..."))

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := m.Flush(ctx); err != nil {
		fmt.Println(errorStyle.Render("Unsaved changes were lost: " + apperr.Message(err, err.Error())))
		return
	}
	fmt.Println(successStyle.Render("Saved"))
}
