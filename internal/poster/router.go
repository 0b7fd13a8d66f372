package poster

import (
	"context"
	"sync"

	"github.com/slipstream/posterd/internal/media"
)

// Strategy resolves a poster for one family of categories. Strategies only
// dispatch; the decisions live in the Service branch methods.
type Strategy interface {
	Fetch(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error)

// Fetch calls f.
func (f StrategyFunc) Fetch(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	return f(ctx, core, rc)
}

// Strategy names.
const (
	StrategyGame    = "game"
	StrategyAnime   = "anime"
	StrategyAudio   = "audio"
	StrategyGeneric = "generic"
	StrategyVideo   = "video"
)

type route struct {
	name     string
	strategy Strategy
}

// Router maps categories to strategies. Unregistered categories use the
// fallback strategy.
type Router struct {
	mu       sync.RWMutex
	routes   map[media.Category]route
	fallback route
}

// NewRouter creates a router with the default strategies registered.
func NewRouter() *Router {
	r := &Router{
		routes:   make(map[media.Category]route),
		fallback: route{name: StrategyVideo, strategy: StrategyFunc(fetchVideo)},
	}
	r.Register(media.CategoryGame, StrategyGame, StrategyFunc(fetchGame))
	r.Register(media.CategoryAnime, StrategyAnime, StrategyFunc(fetchAnime))
	r.Register(media.CategoryMusic, StrategyAudio, StrategyFunc(fetchAudio))
	generic := StrategyFunc(fetchGeneric)
	r.Register(media.CategoryBook, StrategyGeneric, generic)
	r.Register(media.CategoryComic, StrategyGeneric, generic)
	return r
}

// Register binds a category to a strategy, replacing any previous binding.
func (r *Router) Register(category media.Category, name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[category] = route{name: name, strategy: s}
}

// Route returns the strategy for category.
func (r *Router) Route(category media.Category) (string, Strategy) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt, ok := r.routes[category]; ok {
		return rt.name, rt.strategy
	}
	return r.fallback.name, r.fallback.strategy
}

func fetchVideo(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	return core.fetchVideo(ctx, rc)
}

func fetchGame(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	return core.fetchGame(ctx, rc)
}

func fetchAnime(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	return core.fetchAnime(ctx, rc)
}

func fetchAudio(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	return core.fetchAudio(ctx, rc)
}

func fetchGeneric(ctx context.Context, core *Service, rc *RoutingContext) (FetchResult, error) {
	if rc.Category == media.CategoryComic {
		return core.fetchComic(ctx, rc)
	}
	return core.fetchBook(ctx, rc)
}
