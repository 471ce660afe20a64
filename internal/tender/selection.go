package tender

import (
	"math/rand"
	"sync"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/utils"
)

// IsEligible — может ли пользователь попасть в опрос в этот день.
// Дата пропуска, равная сегодняшней или позже, исключает пользователя независимо от CanParticipate.
func IsEligible(m db.Member, today time.Time) bool {
	if m.SkipUntilDate != nil {
		return utils.BeforeDate(*m.SkipUntilDate, today)
	}
	return m.CanParticipate
}

// Selector выбирает кандидатов случайным образом. Источник случайности подставляется снаружи.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Select возвращает min(count, число доступных) разных пользователей, не входящих в excluded.
// Если доступных нет, ErrNoEligibleMembers.
func (s *Selector) Select(members []db.Member, count int, excluded []string, today time.Time) ([]db.Member, error) {
	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[name] = struct{}{}
	}

	eligible := make([]db.Member, 0, len(members))
	seen := make(map[uint]struct{}, len(members))
	for _, m := range members {
		if _, ok := skip[m.FullName]; ok {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		if !IsEligible(m, today) {
			continue
		}
		seen[m.ID] = struct{}{}
		eligible = append(eligible, m)
	}

	if len(eligible) == 0 {
		return nil, apperrors.ErrNoEligibleMembers
	}
	if len(eligible) <= count {
		return eligible, nil
	}

	// частичный Фишер–Йетс: первые count элементов дают равномерную выборку
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < count; i++ {
		j := i + s.rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	return eligible[:count], nil
}
