package services

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/metrics"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/gorm"
)

var ErrUnknownCounter = errors.New("unknown engagement counter")

// FeedConfig controls the slot mix of one discovery feed build.
type FeedConfig struct {
	TotalItems    int
	NewItemSlots  int
	RandomSlots   int
	BoostNewHours int
	HalfLifeHours int
}

// DiscoveryService blends new, popular and lottery listings so the default
// ordering does not converge on a fixed top-N.
type DiscoveryService struct {
	db      *gorm.DB
	cfg     FeedConfig
	metrics *metrics.ModerationMetrics

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDiscoveryService(db *gorm.DB, cfg *config.Config, m *metrics.ModerationMetrics) *DiscoveryService {
	return &DiscoveryService{
		db: db,
		cfg: FeedConfig{
			TotalItems:    cfg.FeedTotalItems,
			NewItemSlots:  cfg.FeedNewSlots,
			RandomSlots:   cfg.FeedRandomSlots,
			BoostNewHours: cfg.FeedBoostNewHours,
			HalfLifeHours: cfg.FeedHalfLifeHours,
		},
		metrics: m,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandSource replaces the RNG; tests use a fixed seed.
func (s *DiscoveryService) SetRandSource(src rand.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(src)
}

// EngagementScore weights the listing's counters and decays the sum with an
// exponential half-life, so raw counter growth cannot pin a listing to the
// top forever.
func (s *DiscoveryService) EngagementScore(l *models.Listing, now time.Time) float64 {
	raw := float64(l.Views)*1 +
		float64(l.Saves)*3 +
		float64(l.CallClicks+l.ChatClicks)*10 +
		float64(l.Shares)*5

	ageHours := now.Sub(l.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	halfLife := float64(s.cfg.HalfLifeHours)
	if halfLife <= 0 {
		return raw
	}
	return raw * math.Pow(0.5, ageHours/halfLife)
}

// BuildFeed assembles the feed from a candidate pool:
//
//  1. new slots: listings created within BoostNewHours, shuffled
//  2. popular slots: highest engagement score among the rest
//  3. random slots: uniform lottery over the whole pool, spliced in at
//     random positions so they are indistinguishable from ranked items
//
// Output IDs are unique and len(output) <= TotalItems. Starved categories
// leave their slots unfilled.
func (s *DiscoveryService) BuildFeed(pool []models.Listing, now time.Time) []models.Listing {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.cfg.TotalItems
	if total <= 0 || len(pool) == 0 {
		return nil
	}

	selected := make([]models.Listing, 0, total)
	used := make(map[uuid.UUID]bool, total)
	take := func(l models.Listing) {
		selected = append(selected, l)
		used[l.ID] = true
	}

	// New slots.
	newCutoff := now.Add(-time.Duration(s.cfg.BoostNewHours) * time.Hour)
	fresh := make([]models.Listing, 0)
	for _, l := range pool {
		if l.CreatedAt.After(newCutoff) {
			fresh = append(fresh, l)
		}
	}
	s.rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	for _, l := range fresh {
		if len(selected) >= s.cfg.NewItemSlots || len(selected) >= total {
			break
		}
		if !used[l.ID] {
			take(l)
		}
	}

	// Popular slots: a fixed share of the total. A starved new category
	// leaves its slots unfilled rather than handing them to popular items.
	popularBudget := len(selected) + total - s.cfg.NewItemSlots - s.cfg.RandomSlots
	ranked := make([]models.Listing, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.EngagementScore(&ranked[i], now) > s.EngagementScore(&ranked[j], now)
	})
	for _, l := range ranked {
		if len(selected) >= popularBudget || len(selected) >= total {
			break
		}
		if !used[l.ID] {
			take(l)
		}
	}

	// Random lottery slots, spliced in at random indices rather than
	// appended, so they don't read as filler at the bottom.
	lottery := make([]models.Listing, len(pool))
	copy(lottery, pool)
	s.rng.Shuffle(len(lottery), func(i, j int) { lottery[i], lottery[j] = lottery[j], lottery[i] })
	picked := 0
	for _, l := range lottery {
		if picked >= s.cfg.RandomSlots || len(selected) >= total {
			break
		}
		if used[l.ID] {
			continue
		}
		pos := s.rng.Intn(len(selected) + 1)
		selected = append(selected, models.Listing{})
		copy(selected[pos+1:], selected[pos:])
		selected[pos] = l
		used[l.ID] = true
		picked++
	}

	if s.metrics != nil {
		s.metrics.FeedBuildDuration.Observe(time.Since(start).Seconds())
	}
	return selected
}

// Feed loads the visible active pool and builds the blended feed.
func (s *DiscoveryService) Feed() ([]models.Listing, error) {
	pool, err := s.activePool()
	if err != nil {
		return nil, err
	}
	return s.BuildFeed(pool, time.Now()), nil
}

// RankByEngagement is the plain "engagement" sort mode, no slot blending.
func (s *DiscoveryService) RankByEngagement() ([]models.Listing, error) {
	pool, err := s.activePool()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sort.SliceStable(pool, func(i, j int) bool {
		return s.EngagementScore(&pool[i], now) > s.EngagementScore(&pool[j], now)
	})
	if len(pool) > s.cfg.TotalItems && s.cfg.TotalItems > 0 {
		pool = pool[:s.cfg.TotalItems]
	}
	return pool, nil
}

func (s *DiscoveryService) activePool() ([]models.Listing, error) {
	var pool []models.Listing
	err := s.db.
		Where("status = ? AND hidden_by_reports = ?", models.ListingActive, false).
		Find(&pool).Error
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// TrackEngagement bumps one engagement counter atomically.
func (s *DiscoveryService) TrackEngagement(listingID uuid.UUID, counter string) error {
	column := ""
	switch counter {
	case "view":
		column = "views"
	case "save":
		column = "saves"
	case "call_click":
		column = "call_clicks"
	case "chat_click":
		column = "chat_clicks"
	case "share":
		column = "shares"
	default:
		return ErrUnknownCounter
	}
	result := s.db.Model(&models.Listing{}).Where("id = ?", listingID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}
