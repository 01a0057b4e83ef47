package api

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsVoice/internal/audio"
	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/tts"
)

func (s *Server) ttsOptions(c *gin.Context) {
	success(c, tts.Options())
}

// synthesize 返回格式与后端一致：url 模式给 base64 JSON，file 模式直接给音频
func (s *Server) synthesize(c *gin.Context) {
	var req tts.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res, err := s.TTS.WithToken(c.GetString(ctxToken)).Synthesize(c.Request.Context(), req)
	if err != nil {
		log.Printf("api: synthesize: %v", err)
		fail(c, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	if req.WithDefaults().ReturnType == tts.ReturnFile {
		c.Data(http.StatusOK, res.ContentType, res.Audio)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"audio":       base64.StdEncoding.EncodeToString(res.Audio),
		"normed_text": res.NormalizedText,
	})
}

func uploadedFile(c *gin.Context) (audio.File, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "bad_request", "file is required")
		return audio.File{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "bad_request", "cannot read uploaded file")
		return audio.File{}, nil, false
	}
	return audio.File{Name: fh.Filename, Data: f}, func() { _ = f.Close() }, true
}

func (s *Server) netSpeech(c *gin.Context) {
	s.analyze(c, "netspeech", (*audio.Client).NetSpeech)
}

func (s *Server) snr(c *gin.Context) {
	s.analyze(c, "snr", (*audio.Client).SNR)
}

func (s *Server) analyze(c *gin.Context, op string, call func(*audio.Client, context.Context, audio.File) (audio.Result, error)) {
	f, done, valid := uploadedFile(c)
	if !valid {
		return
	}
	defer done()

	res, err := call(s.Audio.WithToken(c.GetString(ctxToken)), c.Request.Context(), f)
	if err != nil {
		log.Printf("api: %s: %v", op, err)
		fail(c, http.StatusBadGateway, "upstream_error", strings.TrimPrefix(err.Error(), "audio: "+op+": "))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) convert(c *gin.Context) {
	f, done, valid := uploadedFile(c)
	if !valid {
		return
	}
	defer done()

	var p audio.ConvertParams
	p.SampleRate, _ = strconv.Atoi(c.Query("sample_rate"))
	p.Rate, _ = strconv.ParseFloat(c.Query("rate"), 64)
	p.ReturnType = c.Query("return_type")
	p.AudioFormat = c.Query("audio_format")

	res, err := s.Audio.WithToken(c.GetString(ctxToken)).Convert(c.Request.Context(), f, p)
	if err != nil {
		log.Printf("api: converter: %v", err)
		fail(c, http.StatusBadGateway, "upstream_error", strings.TrimPrefix(err.Error(), "audio: converter: "))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) clone(c *gin.Context) {
	f, done, valid := uploadedFile(c)
	if !valid {
		return
	}
	defer done()

	req := audio.CloneRequest{
		Reference: f,
		GenText:   c.PostForm("gen_text"),
		RefText:   c.PostForm("ref_text"),
		RefLang:   c.PostForm("ref_lang"),
		GenLang:   c.PostForm("gen_lang"),
	}
	if v := c.PostForm("is_upload"); v != "" {
		b, _ := strconv.ParseBool(v)
		req.IsUpload = &b
	}
	req.IsTranslation, _ = strconv.ParseBool(c.PostForm("is_translation"))

	data, contentType, err := s.Audio.WithToken(c.GetString(ctxToken)).Clone(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, audio.ErrEmptyGenText) {
			fail(c, http.StatusBadRequest, "bad_request", "gen_text is required")
			return
		}
		log.Printf("api: clone: %v", err)
		fail(c, http.StatusBadGateway, "upstream_error", strings.TrimPrefix(err.Error(), "audio: clone: "))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="voice_clone_`+f.Name+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) extractArticle(c *gin.Context) {
	var req struct {
		URL      string `json:"url"`
		MaxChars int    `json:"max_chars"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		fail(c, http.StatusBadRequest, "bad_request", "url is required")
		return
	}
	art, err := s.Articles.Extract(req.URL, req.MaxChars)
	if err != nil {
		if errors.Is(err, collector.ErrEmptyArticle) {
			fail(c, http.StatusUnprocessableEntity, "empty_article", err.Error())
			return
		}
		log.Printf("api: extract article: %v", err)
		fail(c, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	success(c, art)
}
