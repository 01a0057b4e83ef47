package recorder

import "encoding/binary"

const wavHeaderSize = 44

// EncodeWAV 生成 16 位 PCM 的 RIFF/WAVE 数据，samples 为交错排列
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	dataSize := len(samples) * 2
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, wavHeaderSize+dataSize)
	le := binary.LittleEndian

	copy(buf[0:4], "RIFF")
	le.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	le.PutUint32(buf[16:20], 16)
	le.PutUint16(buf[20:22], 1) // PCM
	le.PutUint16(buf[22:24], uint16(channels))
	le.PutUint32(buf[24:28], uint32(sampleRate))
	le.PutUint32(buf[28:32], uint32(byteRate))
	le.PutUint16(buf[32:34], uint16(blockAlign))
	le.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	le.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		le.PutUint16(buf[wavHeaderSize+i*2:], uint16(s))
	}
	return buf
}
