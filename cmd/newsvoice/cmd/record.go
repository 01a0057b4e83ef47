package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/recorder"
	"github.com/LJTian/NewsVoice/internal/recorder/mic"
)

var (
	recordOut      string
	recordDuration time.Duration
	recordRate     int
	recordChannels int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the default microphone to WAV",
	Long: `Records 16-bit PCM from the default input device. Stops after --duration
or on Ctrl+C, whichever comes first.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().IntVar(&recordRate, "sample-rate", recorder.DefaultFormat.SampleRate, "capture sample rate")
	recordCmd.Flags().IntVar(&recordChannels, "channels", recorder.DefaultFormat.Channels, "capture channels")
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "recording.wav", "output file")
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 10*time.Second, "max recording length")
}

func recordFormat() recorder.Format {
	return recorder.Format{SampleRate: recordRate, Channels: recordChannels}
}

// recordFor 录音直到 d 到期或 ctx 结束
func recordFor(ctx context.Context, d time.Duration, f recorder.Format) (recorder.Stopped, error) {
	r := recorder.New(mic.New(), f)
	if err := r.Start(ctx); err != nil {
		return recorder.Stopped{}, fmt.Errorf("start recording: %w", err)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for done := false; !done; {
		select {
		case <-timer.C:
			done = true
		case <-ctx.Done():
			done = true
		case <-ticker.C:
			fmt.Printf("\r%s", r.Elapsed().Truncate(time.Second))
		}
	}
	fmt.Println()

	stopped, err := r.Stop()
	if err != nil {
		return recorder.Stopped{}, err
	}
	if readErr := r.Err(); readErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: capture ended early: %v\n", readErr)
	}
	return stopped, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	fmt.Println("Recording... press Ctrl+C to stop.")
	stopped, err := recordFor(cmd.Context(), recordDuration, recordFormat())
	if err != nil {
		printError("recording failed", err)
		return err
	}
	if err := os.WriteFile(recordOut, stopped.Data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Saved %s of audio to %s\n", stopped.Duration.Truncate(time.Millisecond), recordOut)
	return nil
}
