package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/audio"
	"github.com/LJTian/NewsVoice/internal/auth"
)

var (
	analyzeKind string

	convertSampleRate int
	convertRate       float64
	convertFormat     string
	convertReturnType string

	cloneRef         string
	cloneRecord      time.Duration
	cloneText        string
	cloneRefText     string
	cloneRefLang     string
	cloneGenLang     string
	cloneTranslation bool
	cloneOut         string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Speech quality analysis (NetSpeech or SNR)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Resample, change speed or re-encode audio",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Generate speech in a reference voice",
	Long: `Generates speech for --text in the voice of a reference recording.
The reference comes from a file (--ref) or from the microphone (--record).

Examples:
  newsvoice clone --ref me.wav --text "Xin chào" -o clone.wav
  newsvoice clone --record 8s --ref-text "Tôi đang đọc câu này" --text "Xin chào"`,
	RunE: runClone,
}

func init() {
	rootCmd.AddCommand(analyzeCmd, convertCmd, cloneCmd)

	analyzeCmd.Flags().StringVar(&analyzeKind, "kind", "netspeech", "analysis type (netspeech, snr)")

	convertCmd.Flags().IntVar(&convertSampleRate, "sample-rate", 22050, "target sample rate")
	convertCmd.Flags().Float64Var(&convertRate, "rate", 1.0, "speed factor")
	convertCmd.Flags().StringVar(&convertFormat, "format", "wav", "target format (wav, mp3)")
	convertCmd.Flags().StringVar(&convertReturnType, "return-type", "url", "backend return type (url, file)")

	cloneCmd.Flags().StringVar(&cloneRef, "ref", "", "reference audio file")
	cloneCmd.Flags().DurationVar(&cloneRecord, "record", 0, "record the reference from the microphone for this long")
	cloneCmd.Flags().StringVar(&cloneText, "text", "", "text to generate")
	cloneCmd.Flags().StringVar(&cloneRefText, "ref-text", "", "transcript of the reference audio")
	cloneCmd.Flags().StringVar(&cloneRefLang, "ref-lang", "vi", "reference language")
	cloneCmd.Flags().StringVar(&cloneGenLang, "gen-lang", "vi", "generated language")
	cloneCmd.Flags().BoolVar(&cloneTranslation, "translate", false, "translate the text into gen-lang first")
	cloneCmd.Flags().StringVarP(&cloneOut, "out", "o", "voice_clone.wav", "output file")
	cloneCmd.MarkFlagRequired("text")
	cloneCmd.MarkFlagsMutuallyExclusive("ref", "record")
}

func audioClient(sess *auth.Session) *audio.Client {
	return audio.NewClient(backendURL).WithToken(sess.Token())
}

func openAudio(path string) (audio.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.File{}, nil, err
	}
	return audio.File{Name: filepath.Base(path), Data: f}, func() { f.Close() }, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := requireLogin(ctx, auth.PolicyAudioTools...)
	if err != nil {
		return err
	}
	f, closeFile, err := openAudio(args[0])
	if err != nil {
		return err
	}
	defer closeFile()

	c := audioClient(sess)
	var res audio.Result
	switch analyzeKind {
	case "netspeech":
		res, err = c.NetSpeech(ctx, f)
	case "snr":
		res, err = c.SNR(ctx, f)
	default:
		return fmt.Errorf("unknown analysis kind %q", analyzeKind)
	}
	if err != nil {
		printError("analysis failed", err)
		return err
	}
	return printJSON(res)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := requireLogin(ctx, auth.PolicyAudioTools...)
	if err != nil {
		return err
	}
	f, closeFile, err := openAudio(args[0])
	if err != nil {
		return err
	}
	defer closeFile()

	res, err := audioClient(sess).Convert(ctx, f, audio.ConvertParams{
		SampleRate:  convertSampleRate,
		Rate:        convertRate,
		ReturnType:  convertReturnType,
		AudioFormat: convertFormat,
	})
	if err != nil {
		printError("convert failed", err)
		return err
	}
	return printJSON(res)
}

func runClone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := requireLogin(ctx, auth.PolicyVoiceClone...)
	if err != nil {
		return err
	}

	var ref audio.File
	switch {
	case cloneRecord > 0:
		fmt.Printf("Recording reference for %s...\n", cloneRecord)
		stopped, err := recordFor(ctx, cloneRecord, recordFormat())
		if err != nil {
			return err
		}
		ref = audio.File{Name: "recording.wav", Data: bytes.NewReader(stopped.Data)}
	case cloneRef != "":
		f, closeFile, err := openAudio(cloneRef)
		if err != nil {
			return err
		}
		defer closeFile()
		ref = f
	default:
		return fmt.Errorf("either --ref or --record is required")
	}

	data, contentType, err := audioClient(sess).Clone(ctx, audio.CloneRequest{
		Reference:     ref,
		GenText:       cloneText,
		RefText:       cloneRefText,
		RefLang:       cloneRefLang,
		GenLang:       cloneGenLang,
		IsTranslation: cloneTranslation,
	})
	if err != nil {
		printError("voice clone failed", err)
		return err
	}
	if err := os.WriteFile(cloneOut, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Saved %d bytes (%s) to %s\n", len(data), contentType, cloneOut)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
