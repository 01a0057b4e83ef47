// Package mic 通过 PortAudio 读取默认输入设备
package mic

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/LJTian/NewsVoice/internal/recorder"
)

const DefaultFramesPerBuffer = 1024

type Source struct {
	FramesPerBuffer int

	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []int16
}

var _ recorder.Source = (*Source)(nil)

func New() *Source {
	return &Source{FramesPerBuffer: DefaultFramesPerBuffer}
}

func (s *Source) Open(f recorder.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return fmt.Errorf("mic: already open")
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("mic: initialize portaudio: %w", err)
	}

	frames := s.FramesPerBuffer
	if frames <= 0 {
		frames = DefaultFramesPerBuffer
	}
	s.buffer = make([]int16, frames*f.Channels)

	stream, err := portaudio.OpenDefaultStream(f.Channels, 0, float64(f.SampleRate), frames, s.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("mic: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("mic: start stream: %w", err)
	}
	s.stream = stream
	return nil
}

// Read 阻塞读取一个缓冲区，返回副本
func (s *Source) Read() ([]int16, error) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream == nil {
		return nil, fmt.Errorf("mic: stream closed")
	}

	if err := stream.Read(); err != nil {
		return nil, fmt.Errorf("mic: read: %w", err)
	}
	out := make([]int16, len(s.buffer))
	copy(out, s.buffer)
	return out, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()
	if stream == nil {
		return nil
	}

	var firstErr error
	if err := stream.Stop(); err != nil {
		firstErr = err
	}
	if err := stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
