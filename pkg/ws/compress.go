package ws

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
)

// maxFrameSize caps the decompressed size of an inbound frame. Subscription
// clients only ever send small control frames.
const maxFrameSize = 1 << 20

func Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w, err := zlib.NewWriterLevel(buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	w.Close()
	return buf.Bytes(), nil
}

func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, maxFrameSize+1)); err != nil {
		return nil, err
	}

	if buf.Len() > maxFrameSize {
		return nil, errors.New("frame exceeds the decompressed size limit")
	}

	return buf.Bytes(), nil
}
