package source

import (
	"errors"

	"chat-viewer/internal/ports"
)

// ErrNoData возвращается, если MemorySource создан без данных.
var ErrNoData = errors.New("data not set")

// MemorySource реализует интерфейс DataSource для данных, уже находящихся в памяти.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает копию данных, чтобы вызывающий код не мог изменить оригинал.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, ErrNoData
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return dataCopy, nil
}
