package tts

// Option 下拉选项：ID 为提交给后端的值
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	ReturnURL  = "url"
	ReturnFile = "file"

	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

// Voices 可用音色，ID 对应请求中的 accent
func Voices() []Option {
	return []Option{
		{ID: "1", Name: "Hannah (Nữ miền Nam - Vi - Chất lượng thấp)"},
		{ID: "2", Name: "Thu Thuỷ (Nữ miền Bắc - Vi - Chất lượng thấp)"},
		{ID: "3", Name: "Kim Chi (Nữ miền Bắc - Vi)"},
		{ID: "4", Name: "Hồng Phượng (Nữ miền Bắc - Vi)"},
		{ID: "5", Name: "Phương Anh (Nữ miền Nam - Vi)"},
		{ID: "6", Name: "Sơn Long (Nam miền bắc - Vi)"},
		{ID: "7", Name: "Cẩm Tú (Nữ miền Trung - Vi)"},
		{ID: "8", Name: "Hồng Phúc (Nam miền Nam - Vi)"},
		{ID: "9", Name: "LJSpeech (Nữ - En - Thử nghiệm)"},
		{ID: "10", Name: "Ngọc Bích (Nữ miền Bắc - Vi)"},
	}
}

func Rates() []Option {
	return []Option{
		{ID: "0.8", Name: "0.8x (Very Slow)"},
		{ID: "0.9", Name: "0.9x (Slow)"},
		{ID: "1.0", Name: "1.0x (Normal)"},
		{ID: "1.05", Name: "1.05x (Slightly Fast)"},
		{ID: "1.1", Name: "1.1x (Fast)"},
		{ID: "1.2", Name: "1.2x (Very Fast)"},
	}
}

// SampleRates 前端称之为 model
func SampleRates() []Option {
	return []Option{
		{ID: "8000", Name: "8kHz (Low Quality)"},
		{ID: "16000", Name: "16kHz (Standard)"},
		{ID: "22050", Name: "22kHz (High Quality)"},
		{ID: "44100", Name: "44kHz (Premium)"},
	}
}

func ReturnTypes() []Option {
	return []Option{
		{ID: ReturnURL, Name: "URL"},
		{ID: ReturnFile, Name: "File"},
	}
}

func AudioFormats() []Option {
	return []Option{
		{ID: FormatWAV, Name: "WAV"},
		{ID: FormatMP3, Name: "MP3"},
	}
}

// Catalog 一次性返回全部选项，供 /api/tts/options 使用
type Catalog struct {
	Voices       []Option `json:"voices"`
	Rates        []Option `json:"rates"`
	SampleRates  []Option `json:"sample_rates"`
	ReturnTypes  []Option `json:"return_types"`
	AudioFormats []Option `json:"audio_formats"`
}

func Options() Catalog {
	return Catalog{
		Voices:       Voices(),
		Rates:        Rates(),
		SampleRates:  SampleRates(),
		ReturnTypes:  ReturnTypes(),
		AudioFormats: AudioFormats(),
	}
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
