package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/auth"
	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/processor"
	"github.com/LJTian/NewsVoice/internal/tts"
)

var (
	ttsVoice      int
	ttsRate       float64
	ttsSampleRate int
	ttsFormat     string
	ttsReturnType string
	ttsMaxWords   int
	ttsArticleURL string
	ttsCategory   string
	ttsBreaking   bool
	ttsOut        string
)

var ttsCmd = &cobra.Command{
	Use:   "tts [text]",
	Short: "Synthesize speech",
	Long: `Synthesizes speech from text given as arguments, from stdin, or from the
body of a web article (--url).

Examples:
  newsvoice tts "Xin chào các bạn" -o hello.wav
  echo "Tin tức hôm nay" | newsvoice tts --voice 6 --format mp3 -o news.mp3
  newsvoice tts --url https://vnexpress.net/... -o article.wav
  newsvoice tts --news "World News" -o world.wav
  newsvoice tts --breaking -o today.wav`,
	RunE: runTTS,
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List voices, speeds and sample rates",
	Run: func(cmd *cobra.Command, args []string) {
		cat := tts.Options()
		printOptions("Voices (--voice)", cat.Voices)
		printOptions("Speed (--rate)", cat.Rates)
		printOptions("Sample rate (--sample-rate)", cat.SampleRates)
		printOptions("Format (--format)", cat.AudioFormats)
	},
}

func init() {
	rootCmd.AddCommand(ttsCmd, voicesCmd)

	ttsCmd.Flags().IntVar(&ttsVoice, "voice", tts.DefaultAccent, "voice id, see `newsvoice voices`")
	ttsCmd.Flags().Float64Var(&ttsRate, "rate", tts.DefaultRate, "speaking speed")
	ttsCmd.Flags().IntVar(&ttsSampleRate, "sample-rate", tts.DefaultSampleRate, "output sample rate")
	ttsCmd.Flags().StringVar(&ttsFormat, "format", tts.FormatWAV, "audio format (wav, mp3)")
	ttsCmd.Flags().StringVar(&ttsReturnType, "return-type", tts.ReturnURL, "backend return type (url, file)")
	ttsCmd.Flags().IntVar(&ttsMaxWords, "max-words", tts.DefaultMaxWordPerSent, "max words per sentence")
	ttsCmd.Flags().StringVar(&ttsArticleURL, "url", "", "read the text from a web article")
	ttsCmd.Flags().StringVar(&ttsCategory, "news", "", "read a news category aloud")
	ttsCmd.Flags().BoolVar(&ttsBreaking, "breaking", false, "read today's breaking news aloud")
	ttsCmd.Flags().StringVarP(&ttsOut, "out", "o", "", "output file (default: tts.<format>)")
	ttsCmd.MarkFlagsMutuallyExclusive("url", "news", "breaking")
}

func runTTS(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := requireLogin(ctx, auth.PolicyTTS...)
	if err != nil {
		return err
	}

	content, err := ttsContent(ctx, args)
	if err != nil {
		return err
	}

	req := tts.Request{
		Content:        content,
		Rate:           ttsRate,
		SampleRate:     ttsSampleRate,
		Accent:         ttsVoice,
		ReturnType:     ttsReturnType,
		AudioFormat:    ttsFormat,
		MaxWordPerSent: ttsMaxWords,
	}
	res, err := tts.NewClient(backendURL).WithToken(sess.Token()).Synthesize(ctx, req)
	if err != nil {
		printError("synthesize failed", err)
		return err
	}

	out := ttsOut
	if out == "" {
		out = "tts." + req.WithDefaults().AudioFormat
	}
	if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
		return err
	}
	fmt.Printf("Saved %d bytes (%s) to %s\n", len(res.Audio), res.ContentType, out)
	if res.NormalizedText != "" {
		fmt.Printf("Normalized text: %s\n", res.NormalizedText)
	}
	return nil
}

// ttsContent 优先级：--url / --news / --breaking > 参数 > 标准输入
func ttsContent(ctx context.Context, args []string) (string, error) {
	proc := processor.NewSimpleProcessor()
	news := collector.NewNewsClient(backendURL)

	switch {
	case ttsBreaking:
		bn, err := news.FetchLatest(ctx)
		if err != nil {
			return "", err
		}
		return proc.BreakingReadout(*bn), nil
	case ttsCategory != "":
		snap, err := news.FetchByCategories(ctx)
		if err != nil {
			return "", err
		}
		entries, ok := snap.Categories[ttsCategory]
		if !ok {
			return "", fmt.Errorf("unknown category %q, available: %s", ttsCategory, strings.Join(snap.CategoryNames(), ", "))
		}
		return proc.Readout(ttsCategory, entries), nil
	case ttsArticleURL != "":
		art, err := collector.NewArticleExtractor().Extract(ttsArticleURL, processor.DefaultReadoutRunes)
		if err != nil {
			return "", fmt.Errorf("extract article: %w", err)
		}
		fmt.Printf("Article: %s\n", art.Title)
		return art.Text, nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", tts.ErrEmptyContent
	}
	return string(data), nil
}

func printOptions(title string, opts []tts.Option) {
	fmt.Println(title)
	for _, o := range opts {
		fmt.Printf("  %-6s %s\n", o.ID, o.Name)
	}
	fmt.Println()
}
