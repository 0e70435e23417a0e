package source

import (
	"errors"
	"fmt"
	"io"

	"chat-viewer/internal/ports"
)

// ErrTooLarge возвращается, если содержимое превышает допустимый размер.
var ErrTooLarge = errors.New("file is too large")

// ReaderSource читает данные из потока (например, из загруженного multipart-файла)
// с ограничением размера.
type ReaderSource struct {
	r        io.Reader
	name     string
	maxBytes int64
}

// NewReaderSource создает ReaderSource. maxBytes <= 0 означает отсутствие ограничения.
func NewReaderSource(r io.Reader, name string, maxBytes int64) ports.DataSource {
	return &ReaderSource{r: r, name: name, maxBytes: maxBytes}
}

// Fetch читает поток целиком.
func (s *ReaderSource) Fetch() ([]byte, error) {
	if s.r == nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.name, ErrNoData)
	}

	r := s.r
	if s.maxBytes > 0 {
		// Читаем на байт больше лимита, чтобы отличить "ровно лимит" от превышения.
		r = io.LimitReader(s.r, s.maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.name, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", s.name, ErrTooLarge, s.maxBytes)
	}

	return data, nil
}
