package store

import "github.com/dmitrijs2005/formvault/internal/server/models"

func (s *Store) ListPackages() []models.Package {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Package, len(s.state.Packages))
	for i, p := range s.state.Packages {
		out[i] = p.Clone()
	}
	return out
}

// GetPackage returns nil for an empty or unknown id.
func (s *Store) GetPackage(id string) *models.Package {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := findPackage(s.state.Packages, id); p != nil {
		out := p.Clone()
		return &out
	}
	return nil
}
