package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/auth"
	"github.com/LJTian/NewsVoice/internal/config"
)

var (
	backendURL  string
	sessionFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newsvoice",
	Short: "Vietnamese TTS, voice clone and news reader",
	Long: `newsvoice talks to the NewsVoice backend from the terminal.

Commands:
  watch    - live news view, polls the news service
  tts      - synthesize speech from text, stdin or an article URL
  analyze  - NetSpeech / SNR quality analysis (pro)
  convert  - resample / re-encode audio (pro)
  clone    - voice clone from a reference recording (premium)
  record   - record from the microphone to a WAV file`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if !cmd.Flags().Changed("backend") {
			backendURL = cfg.BackendURL
		}
		if !cmd.Flags().Changed("session-file") {
			sessionFile = cfg.SessionFile
		}
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (default: BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "where the login token is kept (default: SESSION_FILE)")
}

func newSession() *auth.Session {
	return auth.NewSession(auth.NewClient(backendURL), &auth.FileTokenStore{Path: sessionFile})
}

// requireLogin 校验本地会话并检查角色
func requireLogin(ctx context.Context, required ...auth.Role) (*auth.Session, error) {
	sess := newSession()
	user, ok := sess.Verify(ctx)
	if !ok {
		return nil, fmt.Errorf("not logged in, run `newsvoice login` first")
	}
	if !sess.Allows(required...) {
		names := make([]string, len(required))
		for i, r := range required {
			names[i] = string(r)
		}
		return nil, fmt.Errorf("%s (%s) cannot use this command, requires: %s",
			user.DisplayName(), user.Role, strings.Join(names, ", "))
	}
	return sess, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
