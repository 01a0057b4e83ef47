package recorder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrAlreadyRecording = errors.New("recorder: already recording")
	ErrNotRecording     = errors.New("recorder: not recording")
)

// Format PCM 16 位采样参数
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat 与浏览器端录音一致：48kHz 双声道
var DefaultFormat = Format{SampleRate: 48000, Channels: 2}

// Source 音频输入。Read 阻塞直到有一段采样，Close 之后 Read 必须返回错误。
type Source interface {
	Open(f Format) error
	Read() ([]int16, error)
	Close() error
}

// State 录音状态：Idle / Recording / Stopped
type State interface {
	isState()
}

type Idle struct{}

type Recording struct {
	Started time.Time
}

// Stopped 保存完成的 WAV 数据
type Stopped struct {
	Data     []byte
	Duration time.Duration
}

func (Idle) isState()      {}
func (Recording) isState() {}
func (Stopped) isState()   {}

type Recorder struct {
	src    Source
	format Format
	now    func() time.Time

	mu      sync.Mutex
	state   State
	samples []int16
	readErr error
	stop    chan struct{}
	done    chan struct{}
}

func New(src Source, format Format) *Recorder {
	if format.SampleRate <= 0 {
		format.SampleRate = DefaultFormat.SampleRate
	}
	if format.Channels <= 0 {
		format.Channels = DefaultFormat.Channels
	}
	return &Recorder{src: src, format: format, now: time.Now, state: Idle{}}
}

// Start Idle 或 Stopped 状态下开始新的录音，之前的结果被丢弃
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.(Recording); ok {
		return ErrAlreadyRecording
	}
	if err := r.src.Open(r.format); err != nil {
		return fmt.Errorf("recorder: open source: %w", err)
	}

	r.samples = r.samples[:0]
	r.readErr = nil
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.state = Recording{Started: r.now()}

	go r.loop(ctx, r.stop, r.done)
	return nil
}

func (r *Recorder) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		chunk, err := r.src.Read()
		if err != nil {
			select {
			case <-stop:
			default:
				log.Printf("recorder: read: %v", err)
				r.mu.Lock()
				r.readErr = err
				r.mu.Unlock()
			}
			return
		}

		r.mu.Lock()
		r.samples = append(r.samples, chunk...)
		r.mu.Unlock()
	}
}

// Stop 结束录音并生成 WAV
func (r *Recorder) Stop() (Stopped, error) {
	r.mu.Lock()
	if _, ok := r.state.(Recording); !ok {
		r.mu.Unlock()
		return Stopped{}, ErrNotRecording
	}
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	closeErr := r.src.Close()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	if closeErr != nil {
		log.Printf("recorder: close source: %v", closeErr)
	}
	samples := make([]int16, len(r.samples))
	copy(samples, r.samples)

	st := Stopped{
		Data:     EncodeWAV(samples, r.format.SampleRate, r.format.Channels),
		Duration: sampleDuration(len(samples), r.format),
	}
	r.state = st
	return st, nil
}

// Reset 回到 Idle；录音中则先停止并丢弃数据
func (r *Recorder) Reset() {
	r.mu.Lock()
	_, recording := r.state.(Recording)
	r.mu.Unlock()

	if recording {
		_, _ = r.Stop()
	}

	r.mu.Lock()
	r.state = Idle{}
	r.samples = nil
	r.mu.Unlock()
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed 录音中返回已录时长，停止后返回音频时长
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch s := r.state.(type) {
	case Recording:
		return r.now().Sub(s.Started)
	case Stopped:
		return s.Duration
	default:
		return 0
	}
}

// Err 录音过程中 Source 返回的错误
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readErr
}

func sampleDuration(n int, f Format) time.Duration {
	frames := n / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}
