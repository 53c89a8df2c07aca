package memory

import (
	"sync"
	"time"

	"chatpulse/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type PlanRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewPlanRepository keeps plans for ttl after their last save and purges
// expired ones every 10 minutes.
func NewPlanRepository(ttl time.Duration) contract.PlanRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &PlanRepository{
		cache: c,
	}
}

func (r *PlanRepository) Save(record contract.PlanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(record.Plan.ID, record, cache.DefaultExpiration)
}

func (r *PlanRepository) Get(id string) (contract.PlanRecord, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(contract.PlanRecord), true
	}
	return contract.PlanRecord{}, false
}

// Update serialises every read-modify-write so concurrent requests on one
// plan cannot overwrite each other.
func (r *PlanRepository) Update(id string, fn func(contract.PlanRecord) (contract.PlanRecord, error)) (contract.PlanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return contract.PlanRecord{}, contract.ErrRecordNotFound
	}
	next, err := fn(x.(contract.PlanRecord))
	if err != nil {
		return contract.PlanRecord{}, err
	}
	r.cache.Set(id, next, cache.DefaultExpiration)
	return next, nil
}

func (r *PlanRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(id)
}

func (r *PlanRepository) Count() int {
	return r.cache.ItemCount()
}
