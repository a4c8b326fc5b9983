package client

import (
	"github.com/Akashc1512/SarvanOM-sub006/internal/models"
)

const (
	InMemoryStorageType = "in-memory"
)

type Storage interface {
	Set(key string, value *models.Client) error
	Get(key string) (*models.Client, error)
	Delete(key string) error
	GetWhere(predicate func(*models.Client) bool) (*models.Client, error)
}
