package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
	"github.com/SyedSaudAli-gh/todochat/internal/chat"
	"github.com/SyedSaudAli-gh/todochat/internal/config"
	"github.com/SyedSaudAli-gh/todochat/internal/history"
	"github.com/SyedSaudAli-gh/todochat/internal/log"
	"github.com/SyedSaudAli-gh/todochat/internal/notify"
	"github.com/SyedSaudAli-gh/todochat/internal/session"
	"github.com/SyedSaudAli-gh/todochat/internal/todo"
	"github.com/SyedSaudAli-gh/todochat/internal/token"
	"github.com/SyedSaudAli-gh/todochat/internal/tui"
)

var (
	version = "0.1.0"
)

func init() {
	// Load .env file if it exists (silent fail if not found)
	_ = godotenv.Load()

	// Initialize logging (enabled via TODOCHAT_DEBUG=1)
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "todochat [message]",
	Short: "todochat - chat with your todo list from the terminal",
	Long: `todochat is a terminal chat client for the Todos assistant.
The assistant reads and edits your task list as you talk to it.

Non-interactive mode:
  todochat "add buy milk"        Send a message directly
  echo "message" | todochat      Send a message via stdin`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		if conversationFlag != "" {
			settings.Conversation = conversationFlag
		}

		app, err := buildApp(settings)
		if err != nil {
			return err
		}

		message := getInputMessage(args)
		if message != "" {
			return runNonInteractive(app, message)
		}

		return tui.Run(app.session, app.history, app.todos, app.notifier)
	},
	SilenceUsage: true,
}

// conversationFlag pins a conversation to resume
var conversationFlag string

func init() {
	rootCmd.Flags().StringVarP(&conversationFlag, "conversation", "c", "", "Conversation ID to resume")
	rootCmd.AddCommand(versionCmd)
}

// app bundles the wired client stack.
type app struct {
	session  *session.Manager
	history  *history.Manager
	todos    *todo.Client
	notifier *notify.Notifier
}

func buildApp(settings *config.Settings) (*app, error) {
	if settings.SessionCookie == "" {
		return nil, fmt.Errorf("no session cookie configured; set TODOCHAT_SESSION_COOKIE or session_cookie in ~/.todochat/settings.yaml")
	}

	minter := &token.HTTPMinter{
		BaseURL: settings.AuthBase,
		Cookie:  settings.SessionCookie,
		HTTP:    http.DefaultClient,
	}
	tokens := token.New(minter)

	apiClient := api.NewClient(settings.APIBase, tokens, api.WithRetryOnUnauthorized())
	chatClient := chat.NewClient(apiClient)

	notifier := notify.NewNotifier()

	var opts []session.Option
	if settings.Conversation != "" {
		opts = append(opts, session.WithConversation(settings.Conversation))
	}

	return &app{
		session:  session.New(chatClient, notifier, opts...),
		history:  history.New(chatClient),
		todos:    todo.NewClient(apiClient),
		notifier: notifier,
	}, nil
}

// getInputMessage gets input from args or stdin
func getInputMessage(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		reader := bufio.NewReader(os.Stdin)
		data, err := io.ReadAll(reader)
		if err == nil && len(data) > 0 {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// runNonInteractive sends one message and prints the reply.
func runNonInteractive(app *app, message string) error {
	ctx := context.Background()

	app.session.Init(ctx)
	if s := app.session.Snapshot(); s.Err != "" {
		return fmt.Errorf("%s", s.Err)
	}

	if err := app.session.Send(ctx, message); err != nil {
		s := app.session.Snapshot()
		if s.Err != "" {
			return fmt.Errorf("%s", s.Err)
		}
		return err
	}

	s := app.session.Snapshot()
	for _, msg := range s.Messages {
		if msg.Role == chat.RoleAssistant {
			fmt.Println(msg.Content)
		}
	}
	if s.ConversationID != "" {
		fmt.Fprintf(os.Stderr, "conversation: %s\n", s.ConversationID)
	}
	app.session.Close()
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("todochat version %s\n", version)
	},
}
