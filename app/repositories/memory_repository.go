package repositories

import (
	"sort"
	"sync"
)

// MemoryToggleRepository implements ToggleRepository with a map.
type MemoryToggleRepository struct {
	visible map[int]bool
	mutex   sync.RWMutex
}

func NewMemoryToggleRepository() *MemoryToggleRepository {
	return &MemoryToggleRepository{visible: make(map[int]bool)}
}

func (m *MemoryToggleRepository) Visible(postID int) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.visible[postID], nil
}

func (m *MemoryToggleRepository) SetVisible(postID int, visible bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if visible {
		m.visible[postID] = true
	} else {
		delete(m.visible, postID)
	}
	return nil
}

func (m *MemoryToggleRepository) VisibleIDs() ([]int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ids := make([]int, 0, len(m.visible))
	for id := range m.visible {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *MemoryToggleRepository) Reset() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.visible = make(map[int]bool)
	return nil
}
