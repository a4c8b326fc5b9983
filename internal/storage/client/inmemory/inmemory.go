package inmemory

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

type Storage struct {
	data   map[string]*models.Client
	logger *zap.Logger

	mtx *sync.Mutex
}

func NewStorage(logger *zap.Logger) *Storage {
	return &Storage{
		data:   make(map[string]*models.Client),
		logger: logger,
		mtx:    &sync.Mutex{},
	}
}

func (s *Storage) Set(key string, value *models.Client) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.data[key] = value
	s.logger.Debug("client added to storage", zap.String("key", key))
	return nil
}

func (s *Storage) Get(key string) (*models.Client, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	v, ok := s.data[key]
	if !ok {
		s.logger.Debug("client not found in storage", zap.String("key", key))
		return nil, ErrClientNotFound
	}
	return v, nil
}

func (s *Storage) Delete(key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.data, key)
	s.logger.Debug("client deleted from storage", zap.String("key", key))
	return nil
}

func (s *Storage) GetWhere(predicate func(*models.Client) bool) (*models.Client, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, v := range s.data {
		if predicate(v) {
			return v, nil
		}
	}
	return nil, nil
}
