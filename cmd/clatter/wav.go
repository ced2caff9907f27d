package main

import (
	"encoding/binary"
	"io"

	"github.com/audiomodal/clatter/internal/pcm"
)

// writeWAVStream writes a mono 16-bit WAV directly to a non-seekable
// writer (e.g. stdout), per spec §6: "standard RIFF/WAVE header, data
// chunk = samples.to_pcm16_bytes()". wav.NewEncoder (used for the
// file-output path in writeWAVSeekable) patches RIFF/data chunk sizes
// via Seek on Close, which stdout cannot support; every size here is
// already known up front, so the header is written directly instead.
func writeWAVStream(w io.Writer, sampleRate int, samples []float32) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	data := pcm.Encode16(samples)

	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataLen := len(data)
	riffLen := 36 + dataLen

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
