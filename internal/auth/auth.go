package auth

// Service answers whether a sender may use the admin panel. The set is fixed
// at startup from configuration.
type Service struct {
	admins map[int64]struct{}
}

func New(adminIDs []int64) *Service {
	s := &Service{admins: make(map[int64]struct{}, len(adminIDs))}
	for _, id := range adminIDs {
		if id == 0 {
			continue
		}
		s.admins[id] = struct{}{}
	}
	return s
}

func (s *Service) IsAdmin(userID int64) bool {
	if s == nil {
		return false
	}
	_, ok := s.admins[userID]
	return ok
}

// List returns the configured admin ids in no particular order.
func (s *Service) List() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		out = append(out, id)
	}
	return out
}
